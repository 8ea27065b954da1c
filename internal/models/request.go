package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request is a receiver's claim on part of a donation.
type Request struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	DonationID        primitive.ObjectID `bson:"donation_id" json:"donationId"`
	DonorID           primitive.ObjectID `bson:"donor_id" json:"donorId"`
	ReceiverID        primitive.ObjectID `bson:"receiver_id" json:"receiverId"`
	PeopleCount       int                `bson:"people_count" json:"peopleCount"`
	FoodPreference    string             `bson:"food_preference" json:"foodPreference"`
	RequestedLocation string             `bson:"requested_location" json:"requestedLocation"`
	Logistics         string             `bson:"logistics" json:"logistics"`
	DeliveryAddress   string             `bson:"delivery_address" json:"deliveryAddress"`
	Status            string             `bson:"status" json:"status"`
	CreatedAt         time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updatedAt"`
}

const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusDeclined = "declined"
	// Reserved: nothing transitions into it yet.
	RequestStatusCompleted = "completed"
)

const (
	LogisticsPickup   = "pickup"
	LogisticsDelivery = "delivery"
)

const DefaultFoodPreference = "any"
