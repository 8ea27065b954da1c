package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sharebite/internal/events"
	"sharebite/internal/models"
	"sharebite/internal/store"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateRequestInput struct {
	DonationID        string
	PeopleCount       int
	FoodPreference    string
	RequestedLocation string
	Logistics         string
	DeliveryAddress   string
}

// ApprovalResult is what a donor gets back after approving or declining.
// RemainingQuantity and DonationStatus are only set on approval.
type ApprovalResult struct {
	Message           string          `json:"message"`
	Request           *models.Request `json:"request"`
	RemainingQuantity *int            `json:"remainingQuantity,omitempty"`
	DonationStatus    string          `json:"donationStatus,omitempty"`
}

// DonationSnapshot is the part of a donation shown next to a request.
type DonationSnapshot struct {
	ID           primitive.ObjectID `json:"_id"`
	FoodName     string             `json:"foodName"`
	Quantity     int                `json:"quantity"`
	LocationText string             `json:"location"`
	Image        string             `json:"image"`
	ImageURL     string             `json:"imageUrl"`
}

type RequestView struct {
	models.Request
	Donation *DonationSnapshot `json:"donation"`
}

type RequestService struct {
	requests  RequestRepository
	donations DonationRepository
	bus       events.Bus
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewRequestService(requests RequestRepository, donations DonationRepository, bus events.Bus, log logrus.FieldLogger) *RequestService {
	return &RequestService{
		requests:  requests,
		donations: donations,
		bus:       bus,
		log:       log,
		now:       time.Now,
	}
}

func (s *RequestService) Create(ctx context.Context, actor Actor, in CreateRequestInput) (*models.Request, error) {
	if actor.Role != models.RoleReceiver {
		return nil, forbiddenError("Only receiver can request donation.")
	}

	donationID, err := primitive.ObjectIDFromHex(strings.TrimSpace(in.DonationID))
	if err != nil || in.PeopleCount < 1 {
		return nil, validationError("donationId and valid peopleCount are required.")
	}

	logistics := strings.ToLower(strings.TrimSpace(in.Logistics))
	switch logistics {
	case "":
		logistics = models.LogisticsPickup
	case models.LogisticsPickup, models.LogisticsDelivery:
	default:
		return nil, validationError("logistics must be pickup or delivery.")
	}

	foodPreference := strings.TrimSpace(in.FoodPreference)
	if foodPreference == "" {
		foodPreference = models.DefaultFoodPreference
	}

	donation, err := s.donations.FindByID(ctx, donationID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if donation == nil || donation.Status != models.DonationStatusActive {
		return nil, notFoundError("Donation not available.")
	}
	if in.PeopleCount > donation.Quantity {
		return nil, validationError("Requested quantity exceeds available quantity.")
	}

	now := s.now()
	request := &models.Request{
		DonationID:        donation.ID,
		DonorID:           donation.DonorID,
		ReceiverID:        actor.ID,
		PeopleCount:       in.PeopleCount,
		FoodPreference:    foodPreference,
		RequestedLocation: strings.TrimSpace(in.RequestedLocation),
		Logistics:         logistics,
		DeliveryAddress:   strings.TrimSpace(in.DeliveryAddress),
		Status:            models.RequestStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.RequestCreated, events.RequestCreatedPayload{
		DonorID:   donation.DonorID,
		RequestID: request.ID,
		FoodName:  donation.FoodName,
	})

	return request, nil
}

// Approve reserves the requested portions and marks the request approved.
// The reservation is a single conditional update on the donation; if the
// request was decided concurrently the portions are handed back.
func (s *RequestService) Approve(ctx context.Context, actor Actor, requestID string) (*ApprovalResult, error) {
	request, err := s.pendingForDonor(ctx, actor, requestID, "approve", "approved")
	if err != nil {
		return nil, err
	}

	donation, err := s.donations.Reserve(ctx, request.DonationID, request.PeopleCount)
	if err != nil {
		if errors.Is(err, store.ErrInsufficientQuantity) {
			return nil, validationError("Donation no longer has enough quantity.")
		}
		return nil, err
	}

	// Portions are already reserved; a client disconnect must not leave them
	// held by a request that never got approved.
	commitCtx := context.WithoutCancel(ctx)
	updated, err := s.requests.Transition(commitCtx, request.ID, models.RequestStatusPending, models.RequestStatusApproved)
	if err != nil {
		s.release(commitCtx, request)
		if errors.Is(err, store.ErrStatusConflict) {
			return nil, validationError("Only pending request can be approved.")
		}
		return nil, err
	}

	s.bus.Publish(ctx, events.RequestUpdated, events.RequestUpdatedPayload{
		ReceiverID: updated.ReceiverID,
		RequestID:  updated.ID,
		Status:     models.RequestStatusApproved,
	})

	s.log.WithFields(logrus.Fields{
		"request_id":  updated.ID.Hex(),
		"donation_id": donation.ID.Hex(),
		"remaining":   donation.Quantity,
	}).Info("request approved")

	remaining := donation.Quantity
	return &ApprovalResult{
		Message:           "Request approved.",
		Request:           updated,
		RemainingQuantity: &remaining,
		DonationStatus:    donation.Status,
	}, nil
}

func (s *RequestService) Decline(ctx context.Context, actor Actor, requestID string) (*ApprovalResult, error) {
	request, err := s.pendingForDonor(ctx, actor, requestID, "decline", "declined")
	if err != nil {
		return nil, err
	}

	updated, err := s.requests.Transition(ctx, request.ID, models.RequestStatusPending, models.RequestStatusDeclined)
	if err != nil {
		if errors.Is(err, store.ErrStatusConflict) {
			return nil, validationError("Only pending request can be declined.")
		}
		return nil, err
	}

	s.bus.Publish(ctx, events.RequestUpdated, events.RequestUpdatedPayload{
		ReceiverID: updated.ReceiverID,
		RequestID:  updated.ID,
		Status:     models.RequestStatusDeclined,
	})

	return &ApprovalResult{Message: "Request declined.", Request: updated}, nil
}

// pendingForDonor loads a request and checks that actor owns its donation
// and that it is still pending.
func (s *RequestService) pendingForDonor(ctx context.Context, actor Actor, requestID, verb, past string) (*models.Request, error) {
	if actor.Role != models.RoleDonor {
		return nil, forbiddenError(fmt.Sprintf("Only donor can %s request.", verb))
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
	if request.DonorID != actor.ID {
		return nil, forbiddenError("Not allowed.")
	}
	if request.Status != models.RequestStatusPending {
		return nil, validationError(fmt.Sprintf("Only pending request can be %s.", past))
	}
	return request, nil
}

func (s *RequestService) release(ctx context.Context, request *models.Request) {
	if _, err := s.donations.Release(ctx, request.DonationID, request.PeopleCount); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"request_id":  request.ID.Hex(),
			"donation_id": request.DonationID.Hex(),
			"quantity":    request.PeopleCount,
		}).Error("failed to release reserved quantity")
	}
}

// List returns the donor's incoming requests, or the requests a receiver
// filed, most recently updated first.
func (s *RequestService) List(ctx context.Context, actor Actor) ([]RequestView, error) {
	var (
		requests []models.Request
		err      error
	)
	if actor.Role == models.RoleDonor {
		requests, err = s.requests.ListByDonor(ctx, actor.ID)
	} else {
		requests, err = s.requests.ListByReceiver(ctx, actor.ID)
	}
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(requests))
	seen := make(map[primitive.ObjectID]bool, len(requests))
	for _, r := range requests {
		if !seen[r.DonationID] {
			seen[r.DonationID] = true
			ids = append(ids, r.DonationID)
		}
	}
	donations, err := s.donations.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]RequestView, 0, len(requests))
	for _, r := range requests {
		view := RequestView{Request: r}
		if d, ok := donations[r.DonationID]; ok {
			view.Donation = &DonationSnapshot{
				ID:           d.ID,
				FoodName:     d.FoodName,
				Quantity:     d.Quantity,
				LocationText: d.LocationText,
				Image:        d.Image,
			}
		}
		views = append(views, view)
	}
	return views, nil
}
