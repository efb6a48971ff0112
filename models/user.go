package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a customer account in the "users" collection. Staff accounts
// live in the parallel "sellers" collection (see Seller).
type User struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name       string              `bson:"name" json:"name"`
	Email      string              `bson:"email" json:"email"`
	Phone      string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Password   string              `bson:"password,omitempty" json:"-"` // "-" means don't include in JSON
	ProfilePic string              `bson:"profilePic,omitempty" json:"profilePic,omitempty"`
	Role       string              `bson:"role" json:"role"` // "user" or "admin"
	IsActive   bool                `bson:"isActive" json:"isActive"`
	CreatedBy  *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
}
