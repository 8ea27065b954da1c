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

// earthRadiusKm converts distances to radians for $centerSphere.
const earthRadiusKm = 6378.1

type DonationStore struct {
	collection *mongo.Collection
}

func NewDonationStore(collection *mongo.Collection) *DonationStore {
	return &DonationStore{collection: collection}
}

// Area restricts a listing to donations within RadiusKm of a point.
type Area struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
}

func (s *DonationStore) Create(ctx context.Context, donation *models.Donation) error {
	result, err := s.collection.InsertOne(ctx, donation)
	if err != nil {
		return fmt.Errorf("inserting donation: %w", err)
	}
	donation.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *DonationStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error) {
	var donation models.Donation
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&donation); err != nil {
		return nil, notFound(err)
	}
	return &donation, nil
}

// FindByIDs loads several donations at once, keyed by id. Missing ids are
// simply absent from the result.
func (s *DonationStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Donation, error) {
	out := make(map[primitive.ObjectID]models.Donation, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := s.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("querying donations: %w", err)
	}
	defer cursor.Close(ctx)

	var donations []models.Donation
	if err := cursor.All(ctx, &donations); err != nil {
		return nil, fmt.Errorf("decoding donations: %w", err)
	}
	for _, d := range donations {
		out[d.ID] = d
	}
	return out, nil
}

// ListActive returns active, unexpired donations, newest first.
func (s *DonationStore) ListActive(ctx context.Context, now time.Time, area *Area) ([]models.Donation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.collection.Find(ctx, activeDonationsFilter(now, area), opts)
	if err != nil {
		return nil, fmt.Errorf("querying active donations: %w", err)
	}
	defer cursor.Close(ctx)

	donations := []models.Donation{}
	if err := cursor.All(ctx, &donations); err != nil {
		return nil, fmt.Errorf("decoding donations: %w", err)
	}
	return donations, nil
}

func activeDonationsFilter(now time.Time, area *Area) bson.M {
	filter := bson.M{
		"status":      models.DonationStatusActive,
		"expiry_time": bson.M{"$gte": now},
	}
	if area != nil {
		// $geoWithin keeps the created_at sort, unlike $nearSphere.
		filter["location"] = bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{
					bson.A{area.Lng, area.Lat},
					area.RadiusKm / earthRadiusKm,
				},
			},
		}
	}
	return filter
}

// Reserve atomically takes qty portions from an active donation. The
// quantity predicate and the decrement happen in one document update, so
// concurrent reservations can never push quantity below zero. The status
// flips to claimed when nothing is left. Returns ErrInsufficientQuantity
// when the donation is gone, inactive, or short.
func (s *DonationStore) Reserve(ctx context.Context, id primitive.ObjectID, qty int) (*models.Donation, error) {
	filter := bson.M{
		"_id":      id,
		"status":   models.DonationStatusActive,
		"quantity": bson.M{"$gte": qty},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var donation models.Donation
	err := s.collection.FindOneAndUpdate(ctx, filter, reserveUpdate(qty, time.Now()), opts).Decode(&donation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrInsufficientQuantity
		}
		return nil, fmt.Errorf("reserving donation quantity: %w", err)
	}
	return &donation, nil
}

func reserveUpdate(qty int, now time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "quantity", Value: bson.D{{Key: "$subtract", Value: bson.A{"$quantity", qty}}}},
			{Key: "updated_at", Value: now},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$lte", Value: bson.A{"$quantity", 0}}},
				models.DonationStatusClaimed,
				models.DonationStatusActive,
			}}}},
		}}},
	}
}

// Release gives qty portions back, undoing a Reserve whose follow-up write
// failed. A claimed donation becomes active again; expired stays expired.
func (s *DonationStore) Release(ctx context.Context, id primitive.ObjectID, qty int) (*models.Donation, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var donation models.Donation
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, releaseUpdate(qty, time.Now()), opts).Decode(&donation)
	if err != nil {
		return nil, notFound(err)
	}
	return &donation, nil
}

func releaseUpdate(qty int, now time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "quantity", Value: bson.D{{Key: "$add", Value: bson.A{"$quantity", qty}}}},
			{Key: "updated_at", Value: now},
			{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$status", models.DonationStatusClaimed}}},
				models.DonationStatusActive,
				"$status",
			}}}},
		}}},
	}
}

// ExpireStale marks active donations whose expiry time has passed.
func (s *DonationStore) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.collection.UpdateMany(ctx, bson.M{
		"status":      models.DonationStatusActive,
		"expiry_time": bson.M{"$lt": now},
	}, bson.M{
		"$set": bson.M{
			"status":     models.DonationStatusExpired,
			"updated_at": now,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("expiring donations: %w", err)
	}
	return result.ModifiedCount, nil
}
