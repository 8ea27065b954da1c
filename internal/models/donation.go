package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Donation struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	DonorID      primitive.ObjectID `bson:"donor_id" json:"donorId"`
	FoodName     string             `bson:"food_name" json:"foodName"`
	Quantity     int                `bson:"quantity" json:"quantity"` // remaining portions
	LocationText string             `bson:"location_text" json:"location"`
	Location     *Location          `bson:"location,omitempty" json:"-"`
	Image        string             `bson:"image" json:"image"`
	ExpiryTime   time.Time          `bson:"expiry_time" json:"expiryTime"`
	Status       string             `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Статусы пожертвований
const (
	DonationStatusActive  = "active"
	DonationStatusClaimed = "claimed"
	DonationStatusExpired = "expired"
)
