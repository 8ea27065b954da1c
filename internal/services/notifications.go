package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"sharebite/internal/events"
	"sharebite/internal/models"
	"sharebite/internal/store"
	"sharebite/internal/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// Pusher delivers a stored notification to the user's live connections.
type Pusher interface {
	SendToUser(userID primitive.ObjectID, msgType string, data interface{})
}

type NotificationOptions struct {
	// NearbyRadiusMeters bounds the donation fan-out.
	NearbyRadiusMeters float64
	// FanoutConcurrency caps concurrent notification writes per event.
	FanoutConcurrency int
}

type NotificationService struct {
	notifications NotificationRepository
	receivers     ReceiverLocator
	pusher        Pusher
	opts          NotificationOptions
	log           logrus.FieldLogger
	now           func() time.Time
}

// NewNotificationService builds the service. pusher may be nil.
func NewNotificationService(notifications NotificationRepository, receivers ReceiverLocator, pusher Pusher, opts NotificationOptions, log logrus.FieldLogger) *NotificationService {
	if opts.NearbyRadiusMeters <= 0 {
		opts.NearbyRadiusMeters = 10000
	}
	if opts.FanoutConcurrency <= 0 {
		opts.FanoutConcurrency = 16
	}
	return &NotificationService{
		notifications: notifications,
		receivers:     receivers,
		pusher:        pusher,
		opts:          opts,
		log:           log,
		now:           time.Now,
	}
}

// Register subscribes the notification handlers to every domain event.
func (s *NotificationService) Register(bus events.Bus) {
	bus.Subscribe(events.DonationCreated, s.onDonationCreated)
	bus.Subscribe(events.RequestCreated, s.onRequestCreated)
	bus.Subscribe(events.RequestUpdated, s.onRequestUpdated)
	bus.Subscribe(events.FeedbackCreated, s.onFeedbackCreated)
}

// Notify stores a notification and pushes it to open connections.
func (s *NotificationService) Notify(ctx context.Context, userID primitive.ObjectID, notificationType, title, body string, data map[string]interface{}) (*models.Notification, error) {
	if data == nil {
		data = map[string]interface{}{}
	}

	now := s.now()
	notification := &models.Notification{
		UserID:    userID,
		Type:      notificationType,
		Title:     title,
		Body:      body,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return nil, err
	}

	if s.pusher != nil {
		s.pusher.SendToUser(userID, "notification", notification)
	}
	return notification, nil
}

func (s *NotificationService) onDonationCreated(ctx context.Context, payload interface{}) error {
	p, ok := payload.(events.DonationCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", payload)
	}
	// Donations without coordinates cannot be matched to anyone.
	if p.Lat == nil || p.Lng == nil {
		return nil
	}

	receivers, err := s.receivers.FindNearbyReceivers(ctx, *p.Lng, *p.Lat, s.opts.NearbyRadiusMeters)
	if err != nil {
		return fmt.Errorf("finding nearby receivers: %w", err)
	}
	if len(receivers) == 0 {
		return nil
	}

	origin := models.NewPoint(*p.Lat, *p.Lng)
	body := fmt.Sprintf("%s is available nearby.", p.FoodName)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.FanoutConcurrency)
	for _, receiver := range receivers {
		receiver := receiver
		g.Go(func() error {
			data := map[string]interface{}{"donationId": p.DonationID}
			if receiver.Location != nil {
				data["distanceKm"] = math.Round(utils.DistanceKm(origin, receiver.Location)*100) / 100
			}
			// One failed write must not cancel the rest of the fan-out.
			if _, err := s.Notify(gctx, receiver.ID, models.NotificationTypeDonationNearby, "New food donation near you", body, data); err != nil {
				s.log.WithError(err).WithFields(logrus.Fields{
					"user_id":     receiver.ID.Hex(),
					"donation_id": p.DonationID.Hex(),
				}).Error("failed to store nearby donation notification")
			}
			return nil
		})
	}
	g.Wait()

	s.log.WithFields(logrus.Fields{
		"donation_id": p.DonationID.Hex(),
		"receivers":   len(receivers),
	}).Debug("nearby donation fan-out finished")
	return nil
}

func (s *NotificationService) onRequestCreated(ctx context.Context, payload interface{}) error {
	p, ok := payload.(events.RequestCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", payload)
	}
	_, err := s.Notify(ctx, p.DonorID, models.NotificationTypeRequestReceived,
		"New request received",
		fmt.Sprintf("A receiver requested %s.", p.FoodName),
		map[string]interface{}{"requestId": p.RequestID})
	return err
}

func (s *NotificationService) onRequestUpdated(ctx context.Context, payload interface{}) error {
	p, ok := payload.(events.RequestUpdatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", payload)
	}
	_, err := s.Notify(ctx, p.ReceiverID, models.NotificationTypeRequestStatusUpdated,
		"Request status updated",
		fmt.Sprintf("Your request was %s.", p.Status),
		map[string]interface{}{"requestId": p.RequestID, "status": p.Status})
	return err
}

func (s *NotificationService) onFeedbackCreated(ctx context.Context, payload interface{}) error {
	p, ok := payload.(events.FeedbackCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", payload)
	}
	_, err := s.Notify(ctx, p.DonorID, models.NotificationTypeFeedbackReceived,
		"New feedback received",
		"A receiver submitted feedback for your donation.",
		map[string]interface{}{"feedbackId": p.FeedbackID})
	return err
}

func (s *NotificationService) List(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	return s.notifications.ListByUser(ctx, userID)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID primitive.ObjectID, notificationID string) (*models.Notification, error) {
	id, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return nil, notFoundError("Notification not found.")
	}
	notification, err := s.notifications.MarkAsRead(ctx, id, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundError("Notification not found.")
		}
		return nil, err
	}
	return notification, nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.notifications.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.notifications.CountUnread(ctx, userID)
}
