// Package services holds the ShareBite business rules. Services depend on the
// small repository interfaces below so they can be exercised without Mongo.
package services

import (
	"context"
	"time"

	"sharebite/internal/models"
	"sharebite/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated caller.
type Actor struct {
	ID   primitive.ObjectID
	Role models.UserRole
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error
}

// ReceiverLocator answers the proximity query behind donation fan-out.
type ReceiverLocator interface {
	FindNearbyReceivers(ctx context.Context, lng, lat, radiusMeters float64) ([]models.NearbyUser, error)
}

type DonationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Donation, error)
	ListActive(ctx context.Context, now time.Time, area *store.Area) ([]models.Donation, error)
	Reserve(ctx context.Context, id primitive.ObjectID, qty int) (*models.Donation, error)
	Release(ctx context.Context, id primitive.ObjectID, qty int) (*models.Donation, error)
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type RequestRepository interface {
	Create(ctx context.Context, request *models.Request) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error)
	Transition(ctx context.Context, id primitive.ObjectID, from, to string) (*models.Request, error)
	ListByDonor(ctx context.Context, donorID primitive.ObjectID) ([]models.Request, error)
	ListByReceiver(ctx context.Context, receiverID primitive.ObjectID) ([]models.Request, error)
}

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	List(ctx context.Context, donorID *primitive.ObjectID) ([]models.Feedback, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error)
	MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

var (
	_ UserRepository         = (*store.UserStore)(nil)
	_ ReceiverLocator        = (*store.UserStore)(nil)
	_ DonationRepository     = (*store.DonationStore)(nil)
	_ RequestRepository      = (*store.RequestStore)(nil)
	_ FeedbackRepository     = (*store.FeedbackStore)(nil)
	_ NotificationRepository = (*store.NotificationStore)(nil)
)
