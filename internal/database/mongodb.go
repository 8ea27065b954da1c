// internal/database/mongodb.go
package database

import (
	"context"
	"fmt"
	"time"

	"sharebite/internal/config"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	UsersCollection         = "users"
	DonationsCollection     = "donations"
	RequestsCollection      = "requests"
	FeedbackCollection      = "feedback"
	NotificationsCollection = "notifications"
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
	log      logrus.FieldLogger
}

func NewMongoDB(cfg *config.Config, log logrus.FieldLogger) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.MongoTimeout)*time.Second)
	defer cancel()

	// Настройки клиента
	clientOptions := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(100).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(30 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("pinging MongoDB: %w", err)
	}

	log.WithField("database", cfg.DatabaseName).Info("connected to MongoDB")

	return &MongoDB{
		Client:   client,
		Database: client.Database(cfg.DatabaseName),
		log:      log,
	}, nil
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnecting from MongoDB: %w", err)
	}

	m.log.Info("disconnected from MongoDB")
	return nil
}

// Collection returns a handle on the named collection.
func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.Database.Collection(name)
}

// IndexModels lists the indexes each collection needs. bson.D keeps key order,
// which matters for compound indexes.
func IndexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		UsersCollection: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				// Proximity lookup of receivers; documents without a
				// location are simply not indexed.
				Keys: bson.D{{Key: "location", Value: "2dsphere"}},
			},
			{
				Keys: bson.D{{Key: "role", Value: 1}},
			},
		},
		DonationsCollection: {
			{
				Keys: bson.D{
					{Key: "status", Value: 1},
					{Key: "expiry_time", Value: 1},
				},
			},
			{
				Keys: bson.D{{Key: "created_at", Value: -1}},
			},
			{
				Keys: bson.D{{Key: "location", Value: "2dsphere"}},
			},
			{
				Keys: bson.D{{Key: "donor_id", Value: 1}},
			},
		},
		RequestsCollection: {
			{
				Keys: bson.D{
					{Key: "donor_id", Value: 1},
					{Key: "updated_at", Value: -1},
				},
			},
			{
				Keys: bson.D{
					{Key: "receiver_id", Value: 1},
					{Key: "updated_at", Value: -1},
				},
			},
			{
				Keys: bson.D{{Key: "donation_id", Value: 1}},
			},
		},
		FeedbackCollection: {
			{
				Keys: bson.D{
					{Key: "donor_id", Value: 1},
					{Key: "created_at", Value: -1},
				},
			},
			{
				Keys: bson.D{{Key: "request_id", Value: 1}},
			},
		},
		NotificationsCollection: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "created_at", Value: -1},
				},
			},
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "is_read", Value: 1},
				},
			},
		},
	}
}

// CreateIndexes создает индексы для всех коллекций
func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	for name, indexes := range IndexModels() {
		if _, err := m.Database.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("creating indexes for %s: %w", name, err)
		}
	}

	m.log.Info("indexes created for all collections")
	return nil
}
