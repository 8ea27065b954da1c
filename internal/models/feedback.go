package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Feedback struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	RequestID  primitive.ObjectID `bson:"request_id" json:"requestId"`
	DonationID primitive.ObjectID `bson:"donation_id" json:"donationId"`
	DonorID    primitive.ObjectID `bson:"donor_id" json:"donorId"`
	ReceiverID primitive.ObjectID `bson:"receiver_id" json:"receiverId"`
	Rating     int                `bson:"rating" json:"rating"`
	Comment    string             `bson:"comment" json:"comment"`
	// Reserved, never populated.
	Photo     string    `bson:"photo" json:"photo"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
