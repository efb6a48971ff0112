package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Staff roles stored in the "sellers" collection.
const (
	RoleSeller     = "seller"
	RoleEmployee   = "employee"
	RoleManager    = "manager"
	RoleSupervisor = "supervisor"
	RoleDelivery   = "delivery"
	RoleAdmin      = "admin"
	RoleUser       = "user"
)

// DefaultDeliveryRadiusKm is applied to new delivery agents that have no
// explicit service radius.
const DefaultDeliveryRadiusKm = 10

// ServiceArea is a named zone a delivery agent covers.
type ServiceArea struct {
	Name     string   `bson:"name" json:"name"`
	Polygon  GeoShape `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
	RadiusKm float64  `bson:"radius" json:"radius"`
}

// Seller is a staff account: sellers, employees, managers, supervisors and
// delivery agents. The location fields are only meaningful for the
// delivery role.
type Seller struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name              string              `bson:"name" json:"name"`
	Email             string              `bson:"email" json:"email"`
	Phone             string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Password          string              `bson:"password,omitempty" json:"-"`
	ProfilePic        string              `bson:"profilePic,omitempty" json:"profilePic,omitempty"`
	Role              string              `bson:"role" json:"role"`
	Department        string              `bson:"department,omitempty" json:"department,omitempty"`
	IsActive          bool                `bson:"isActive" json:"isActive"`
	IsFirstLogin      bool                `bson:"isFirstLogin" json:"isFirstLogin"`
	LastLogin         *time.Time          `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CurrentLocation   GeoPoint            `bson:"currentLocation,omitempty" json:"currentLocation,omitempty"`
	ServiceAreas      []ServiceArea       `bson:"serviceAreas,omitempty" json:"serviceAreas,omitempty"`
	MaxDeliveryRadius float64             `bson:"maxDeliveryRadius" json:"maxDeliveryRadius"` // km
	IsAvailable       bool                `bson:"isAvailable" json:"isAvailable"`
	VehicleType       string              `bson:"vehicleType,omitempty" json:"vehicleType,omitempty"` // bike, scooter, car, van
	LicenseNumber     string              `bson:"licenseNumber,omitempty" json:"licenseNumber,omitempty"`
	CreatedBy         *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt         time.Time           `bson:"createdAt" json:"createdAt"`
}
