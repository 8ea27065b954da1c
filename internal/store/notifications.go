package store

import (
	"context"
	"fmt"
	"time"

	"sharebite/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationStore struct {
	collection *mongo.Collection
}

func NewNotificationStore(collection *mongo.Collection) *NotificationStore {
	return &NotificationStore{collection: collection}
}

func (s *NotificationStore) Create(ctx context.Context, notification *models.Notification) error {
	result, err := s.collection.InsertOne(ctx, notification)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	notification.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *NotificationStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("decoding notifications: %w", err)
	}
	return notifications, nil
}

// MarkAsRead flips is_read on a notification owned by userID. Someone else's
// notification is reported as ErrNotFound.
func (s *NotificationStore) MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error) {
	now := time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var notification models.Notification
	err := s.collection.FindOneAndUpdate(ctx, bson.M{
		"_id":     id,
		"user_id": userID,
	}, bson.M{
		"$set": bson.M{
			"is_read":    true,
			"read_at":    now,
			"updated_at": now,
		},
	}, opts).Decode(&notification)
	if err != nil {
		return nil, notFound(err)
	}
	return &notification, nil
}

func (s *NotificationStore) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	now := time.Now()
	result, err := s.collection.UpdateMany(ctx, bson.M{
		"user_id": userID,
		"is_read": false,
	}, bson.M{
		"$set": bson.M{
			"is_read":    true,
			"read_at":    now,
			"updated_at": now,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("marking notifications as read: %w", err)
	}
	return result.ModifiedCount, nil
}

func (s *NotificationStore) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{
		"user_id": userID,
		"is_read": false,
	})
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}
