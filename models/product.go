package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Rating struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	Rating    int                `bson:"rating" json:"rating"` // 1-5
	Review    string             `bson:"review,omitempty" json:"review,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description" json:"description"`
	Price        float64            `bson:"price" json:"price"`
	Image        string             `bson:"image" json:"image"`
	Category     string             `bson:"category" json:"category"`
	Uses         []string           `bson:"uses,omitempty" json:"uses,omitempty"`
	Quality      string             `bson:"quality" json:"quality"` // Premium, Standard, Organic
	Grade        string             `bson:"grade" json:"grade"`     // A+, A, B, Premium
	InStock      int                `bson:"inStock" json:"inStock"`
	QuantityUnit string             `bson:"quantityUnit" json:"quantityUnit"` // grams or count

	// Medicine-specific fields
	DosageForm        string     `bson:"dosageForm,omitempty" json:"dosageForm,omitempty"`
	Strength          string     `bson:"strength,omitempty" json:"strength,omitempty"`
	ActiveIngredients []string   `bson:"activeIngredients,omitempty" json:"activeIngredients,omitempty"`
	Indications       []string   `bson:"indications,omitempty" json:"indications,omitempty"`
	Dosage            string     `bson:"dosage,omitempty" json:"dosage,omitempty"`
	Contraindications string     `bson:"contraindications,omitempty" json:"contraindications,omitempty"`
	SideEffects       string     `bson:"sideEffects,omitempty" json:"sideEffects,omitempty"`
	ExpiryDate        *time.Time `bson:"expiryDate,omitempty" json:"expiryDate,omitempty"`
	BatchNumber       string     `bson:"batchNumber,omitempty" json:"batchNumber,omitempty"`
	Manufacturer      string     `bson:"manufacturer,omitempty" json:"manufacturer,omitempty"`
	LicenseNumber     string     `bson:"licenseNumber,omitempty" json:"licenseNumber,omitempty"`

	Seller        primitive.ObjectID `bson:"seller" json:"seller"`
	GeoIndication string             `bson:"geoIndication,omitempty" json:"geoIndication,omitempty"`
	Ratings       []Rating           `bson:"ratings,omitempty" json:"ratings,omitempty"`
	AverageRating float64            `bson:"averageRating" json:"averageRating"`
	TotalRatings  int                `bson:"totalRatings" json:"totalRatings"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
