package events

import "go.mongodb.org/mongo-driver/bson/primitive"

// DonationCreatedPayload is published after a donation is stored. Lat and Lng
// are nil when the donor gave no usable coordinates.
type DonationCreatedPayload struct {
	DonationID primitive.ObjectID
	FoodName   string
	Lat        *float64
	Lng        *float64
}

type RequestCreatedPayload struct {
	DonorID   primitive.ObjectID
	RequestID primitive.ObjectID
	FoodName  string
}

type RequestUpdatedPayload struct {
	ReceiverID primitive.ObjectID
	RequestID  primitive.ObjectID
	Status     string
}

type FeedbackCreatedPayload struct {
	DonorID    primitive.ObjectID
	FeedbackID primitive.ObjectID
}
