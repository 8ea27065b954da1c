package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Notification struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID     `bson:"user_id" json:"userId"`
	Type      string                 `bson:"type" json:"type"`
	Title     string                 `bson:"title" json:"title"`
	Body      string                 `bson:"body" json:"body"`
	Data      map[string]interface{} `bson:"data" json:"data"`
	IsRead    bool                   `bson:"is_read" json:"isRead"`
	ReadAt    *time.Time             `bson:"read_at,omitempty" json:"readAt,omitempty"`
	CreatedAt time.Time              `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time              `bson:"updated_at" json:"updatedAt"`
}

// Типы уведомлений
const (
	NotificationTypeDonationNearby       = "donation_nearby"
	NotificationTypeRequestReceived      = "request_received"
	NotificationTypeRequestStatusUpdated = "request_status_updated"
	NotificationTypeFeedbackReceived     = "feedback_received"
)
