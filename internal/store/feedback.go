package store

import (
	"context"
	"fmt"

	"sharebite/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FeedbackStore struct {
	collection *mongo.Collection
}

func NewFeedbackStore(collection *mongo.Collection) *FeedbackStore {
	return &FeedbackStore{collection: collection}
}

func (s *FeedbackStore) Create(ctx context.Context, feedback *models.Feedback) error {
	result, err := s.collection.InsertOne(ctx, feedback)
	if err != nil {
		return fmt.Errorf("inserting feedback: %w", err)
	}
	feedback.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// List returns feedback newest first; a nil donorID lists everything.
func (s *FeedbackStore) List(ctx context.Context, donorID *primitive.ObjectID) ([]models.Feedback, error) {
	filter := bson.M{}
	if donorID != nil {
		filter["donor_id"] = *donorID
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("querying feedback: %w", err)
	}
	defer cursor.Close(ctx)

	rows := []models.Feedback{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decoding feedback: %w", err)
	}
	return rows, nil
}
