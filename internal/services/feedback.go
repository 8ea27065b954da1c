package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"sharebite/internal/events"
	"sharebite/internal/models"
	"sharebite/internal/store"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateFeedbackInput struct {
	RequestID string
	Rating    int
	Comment   string
}

type FeedbackService struct {
	feedback FeedbackRepository
	requests RequestRepository
	bus      events.Bus
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewFeedbackService(feedback FeedbackRepository, requests RequestRepository, bus events.Bus, log logrus.FieldLogger) *FeedbackService {
	return &FeedbackService{
		feedback: feedback,
		requests: requests,
		bus:      bus,
		log:      log,
		now:      time.Now,
	}
}

func (s *FeedbackService) Create(ctx context.Context, actor Actor, in CreateFeedbackInput) (*models.Feedback, error) {
	if actor.Role != models.RoleReceiver {
		return nil, forbiddenError("Only receiver can submit feedback.")
	}

	requestID := strings.TrimSpace(in.RequestID)
	if requestID == "" {
		return nil, validationError("requestId is required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, validationError("Valid rating is required")
	}

	id, err := primitive.ObjectIDFromHex(requestID)
	if err != nil {
		return nil, notFoundError("Request not found.")
	}
	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundError("Request not found.")
		}
		return nil, err
	}
	if request.ReceiverID != actor.ID {
		return nil, forbiddenError("Not allowed.")
	}
	if request.Status != models.RequestStatusApproved && request.Status != models.RequestStatusCompleted {
		return nil, validationError("Feedback allowed only for approved/completed requests.")
	}

	now := s.now()
	feedback := &models.Feedback{
		RequestID:  request.ID,
		DonationID: request.DonationID,
		DonorID:    request.DonorID,
		ReceiverID: request.ReceiverID,
		Rating:     in.Rating,
		Comment:    strings.TrimSpace(in.Comment),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.feedback.Create(ctx, feedback); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.FeedbackCreated, events.FeedbackCreatedPayload{
		DonorID:    request.DonorID,
		FeedbackID: feedback.ID,
	})

	return feedback, nil
}

// List shows donors the feedback on their own donations; everyone else sees
// the community feed.
func (s *FeedbackService) List(ctx context.Context, actor Actor) ([]models.Feedback, error) {
	if actor.Role == models.RoleDonor {
		return s.feedback.List(ctx, &actor.ID)
	}
	return s.feedback.List(ctx, nil)
}
