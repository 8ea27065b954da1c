package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sharebite/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserStore struct {
	collection *mongo.Collection
}

func NewUserStore(collection *mongo.Collection) *UserStore {
	return &UserStore{collection: collection}
}

// Create inserts a user and fills in its id. A unique-index violation on
// email is reported as ErrDuplicateEmail.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	result, err := s.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	user.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *UserStore) UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"password_hash": hash,
			"updated_at":    time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("updating password hash: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindNearbyReceivers returns receivers whose location lies within
// radiusMeters of the point, nearest first.
func (s *UserStore) FindNearbyReceivers(ctx context.Context, lng, lat, radiusMeters float64) ([]models.NearbyUser, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1, "location": 1})

	cursor, err := s.collection.Find(ctx, nearbyReceiversFilter(lng, lat, radiusMeters), opts)
	if err != nil {
		return nil, fmt.Errorf("querying nearby receivers: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.NearbyUser
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decoding nearby receivers: %w", err)
	}
	return users, nil
}

func nearbyReceiversFilter(lng, lat, radiusMeters float64) bson.M {
	return bson.M{
		"role": models.RoleReceiver,
		"location": bson.M{
			"$nearSphere": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lng, lat},
				},
				"$maxDistance": radiusMeters,
			},
		},
	}
}

// NormalizeRoles rewrites legacy role values in place: case and whitespace
// variants of a known role keep that role, "volunteer" becomes admin and a
// missing or empty role becomes receiver. Unrecognised values are left alone.
// It returns the number of modified documents.
func (s *UserStore) NormalizeRoles(ctx context.Context) (int64, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1, "role": 1})
	cursor, err := s.collection.Find(ctx, legacyRoleFilter(), opts)
	if err != nil {
		return 0, fmt.Errorf("querying legacy roles: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID   primitive.ObjectID `bson:"_id"`
		Role string             `bson:"role"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return 0, fmt.Errorf("decoding legacy roles: %w", err)
	}

	var modified int64
	for _, doc := range docs {
		role, ok := normalizeStoredRole(doc.Role)
		if !ok {
			continue
		}
		result, err := s.collection.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{
			"$set": bson.M{
				"role":       role,
				"updated_at": time.Now(),
			},
		})
		if err != nil {
			return modified, fmt.Errorf("normalizing role of %s: %w", doc.ID.Hex(), err)
		}
		modified += result.ModifiedCount
	}
	return modified, nil
}

func legacyRoleFilter() bson.M {
	return bson.M{
		"$or": []bson.M{
			{"role": bson.M{"$exists": false}},
			{"role": bson.M{"$nin": models.AllRoles()}},
		},
	}
}

func normalizeStoredRole(raw string) (models.UserRole, bool) {
	if strings.TrimSpace(raw) == "" {
		return models.RoleReceiver, true
	}
	return models.NormalizeRole(raw)
}
