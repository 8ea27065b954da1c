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

type RequestStore struct {
	collection *mongo.Collection
}

func NewRequestStore(collection *mongo.Collection) *RequestStore {
	return &RequestStore{collection: collection}
}

func (s *RequestStore) Create(ctx context.Context, request *models.Request) error {
	result, err := s.collection.InsertOne(ctx, request)
	if err != nil {
		return fmt.Errorf("inserting request: %w", err)
	}
	request.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *RequestStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error) {
	var request models.Request
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request); err != nil {
		return nil, notFound(err)
	}
	return &request, nil
}

// Transition moves a request from one status to another only if it is still
// in the expected status. Losing the race returns ErrStatusConflict.
func (s *RequestStore) Transition(ctx context.Context, id primitive.ObjectID, from, to string) (*models.Request, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var request models.Request
	err := s.collection.FindOneAndUpdate(ctx, bson.M{
		"_id":    id,
		"status": from,
	}, bson.M{
		"$set": bson.M{
			"status":     to,
			"updated_at": time.Now(),
		},
	}, opts).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrStatusConflict
		}
		return nil, fmt.Errorf("updating request status: %w", err)
	}
	return &request, nil
}

// ListByDonor returns requests filed against the donor's donations.
func (s *RequestStore) ListByDonor(ctx context.Context, donorID primitive.ObjectID) ([]models.Request, error) {
	return s.list(ctx, bson.M{"donor_id": donorID})
}

// ListByReceiver returns requests the receiver filed.
func (s *RequestStore) ListByReceiver(ctx context.Context, receiverID primitive.ObjectID) ([]models.Request, error) {
	return s.list(ctx, bson.M{"receiver_id": receiverID})
}

func (s *RequestStore) list(ctx context.Context, filter bson.M) ([]models.Request, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("querying requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := []models.Request{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("decoding requests: %w", err)
	}
	return requests, nil
}
