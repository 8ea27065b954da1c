package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"sharebite/internal/events"
	"sharebite/internal/imaging"
	"sharebite/internal/models"
	"sharebite/internal/storage"
	"sharebite/internal/store"

	"github.com/sirupsen/logrus"
)

// Layouts accepted for expiryTime. The web client sends datetime-local values
// without a zone; those are read in the server's local time.
var expiryLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

type CreateDonationInput struct {
	FoodName     string
	Quantity     int
	LocationText string
	Location     *models.Location
	ExpiryTime   string
	// Image is nil when no photo was uploaded.
	Image io.Reader
}

type DonationService struct {
	donations     DonationRepository
	images        storage.ImageStore
	bus           events.Bus
	log           logrus.FieldLogger
	maxImageBytes int64
	now           func() time.Time
}

func NewDonationService(donations DonationRepository, images storage.ImageStore, bus events.Bus, maxImageBytes int64, log logrus.FieldLogger) *DonationService {
	return &DonationService{
		donations:     donations,
		images:        images,
		bus:           bus,
		log:           log,
		maxImageBytes: maxImageBytes,
		now:           time.Now,
	}
}

func (s *DonationService) Create(ctx context.Context, actor Actor, in CreateDonationInput) (*models.Donation, error) {
	if actor.Role != models.RoleDonor {
		return nil, forbiddenError("Only donor can create donation.")
	}

	foodName := strings.TrimSpace(in.FoodName)
	if foodName == "" || in.Quantity < 1 || strings.TrimSpace(in.ExpiryTime) == "" {
		return nil, validationError("foodName, quantity, expiryTime are required.")
	}
	expiry, ok := parseExpiry(in.ExpiryTime)
	if !ok {
		return nil, validationError("expiryTime is not a valid date.")
	}

	var imagePath string
	if in.Image != nil {
		path, err := s.saveImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		imagePath = path
	}

	now := s.now()
	donation := &models.Donation{
		DonorID:      actor.ID,
		FoodName:     foodName,
		Quantity:     in.Quantity,
		LocationText: strings.TrimSpace(in.LocationText),
		Location:     in.Location,
		Image:        imagePath,
		ExpiryTime:   expiry,
		Status:       models.DonationStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.donations.Create(ctx, donation); err != nil {
		return nil, err
	}

	payload := events.DonationCreatedPayload{
		DonationID: donation.ID,
		FoodName:   donation.FoodName,
	}
	if donation.Location != nil {
		lat, lng := donation.Location.Lat(), donation.Location.Lng()
		payload.Lat, payload.Lng = &lat, &lng
	}
	s.bus.Publish(ctx, events.DonationCreated, payload)

	s.log.WithFields(logrus.Fields{
		"donation_id": donation.ID.Hex(),
		"donor_id":    actor.ID.Hex(),
		"quantity":    donation.Quantity,
	}).Info("donation created")

	return donation, nil
}

func (s *DonationService) saveImage(ctx context.Context, r io.Reader) (string, error) {
	img, err := imaging.Process(r, s.maxImageBytes)
	switch {
	case errors.Is(err, imaging.ErrImageTooLarge):
		return "", validationError(fmt.Sprintf("Image must be %dMB or smaller.", s.maxImageBytes>>20))
	case errors.Is(err, imaging.ErrUnsupportedImage):
		return "", validationError("Only image uploads are allowed.")
	case err != nil:
		return "", err
	}

	path, err := s.images.Save(ctx, img.Data, img.Ext, img.MIME)
	if err != nil {
		return "", fmt.Errorf("saving donation image: %w", err)
	}
	return path, nil
}

// ListActive returns donations that are active and not yet expired, newest
// first. A non-nil area narrows the result to donations near a point.
func (s *DonationService) ListActive(ctx context.Context, area *store.Area) ([]models.Donation, error) {
	if area != nil && (area.RadiusKm <= 0 || area.RadiusKm > 100) {
		return nil, validationError("radius_km must be between 0 and 100.")
	}
	return s.donations.ListActive(ctx, s.now(), area)
}

// ExpireStale marks active donations whose expiry time has passed.
func (s *DonationService) ExpireStale(ctx context.Context) (int64, error) {
	n, err := s.donations.ExpireStale(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.WithField("count", n).Info("expired stale donations")
	}
	return n, nil
}

// RunExpirySweeper calls ExpireStale every interval until ctx is done.
func (s *DonationService) RunExpirySweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.ExpireStale(ctx); err != nil && ctx.Err() == nil {
				s.log.WithError(err).Error("expiry sweep failed")
			}
		}
	}
}

func parseExpiry(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range expiryLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
