// Package storetest provides in-memory stand-ins for the Mongo stores. They
// honour the same contracts (sentinel errors, atomic Reserve, status
// predicated Transition) and are meant for tests.
package storetest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"sharebite/internal/models"
	"sharebite/internal/store"
	"sharebite/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Users struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func NewUsers() *Users {
	return &Users{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *Users) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return store.ErrDuplicateEmail
		}
	}
	user.ID = primitive.NewObjectID()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *Users) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *Users) UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *Users) FindNearbyReceivers(ctx context.Context, lng, lat, radiusMeters float64) ([]models.NearbyUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	origin := models.NewPoint(lat, lng)
	var out []models.NearbyUser
	for _, u := range f.users {
		if u.Role != models.RoleReceiver || u.Location == nil {
			continue
		}
		if utils.DistanceKm(origin, u.Location)*1000 <= radiusMeters {
			out = append(out, models.NearbyUser{ID: u.ID, Location: u.Location})
		}
	}
	return out, nil
}

type Donations struct {
	mu        sync.Mutex
	donations map[primitive.ObjectID]*models.Donation
	Releases  int
	// AfterReserve runs once a reservation has been committed.
	AfterReserve func()
}

func NewDonations() *Donations {
	return &Donations{donations: make(map[primitive.ObjectID]*models.Donation)}
}

func (f *Donations) Create(ctx context.Context, donation *models.Donation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	donation.ID = primitive.NewObjectID()
	cp := *donation
	f.donations[donation.ID] = &cp
	return nil
}

func (f *Donations) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.donations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *Donations) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[primitive.ObjectID]models.Donation)
	for _, id := range ids {
		if d, ok := f.donations[id]; ok {
			out[id] = *d
		}
	}
	return out, nil
}

func (f *Donations) ListActive(ctx context.Context, now time.Time, area *store.Area) ([]models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Donation{}
	for _, d := range f.donations {
		if d.Status != models.DonationStatusActive || d.ExpiryTime.Before(now) {
			continue
		}
		if area != nil {
			if d.Location == nil || utils.DistanceKm(models.NewPoint(area.Lat, area.Lng), d.Location) > area.RadiusKm {
				continue
			}
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *Donations) Reserve(ctx context.Context, id primitive.ObjectID, qty int) (*models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.donations[id]
	if !ok || d.Status != models.DonationStatusActive || d.Quantity < qty {
		return nil, store.ErrInsufficientQuantity
	}
	d.Quantity -= qty
	if d.Quantity <= 0 {
		d.Status = models.DonationStatusClaimed
	}
	cp := *d
	if f.AfterReserve != nil {
		f.AfterReserve()
	}
	return &cp, nil
}

func (f *Donations) Release(ctx context.Context, id primitive.ObjectID, qty int) (*models.Donation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.donations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	f.Releases++
	d.Quantity += qty
	if d.Status == models.DonationStatusClaimed {
		d.Status = models.DonationStatusActive
	}
	cp := *d
	return &cp, nil
}

func (f *Donations) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, d := range f.donations {
		if d.Status == models.DonationStatusActive && d.ExpiryTime.Before(now) {
			d.Status = models.DonationStatusExpired
			n++
		}
	}
	return n, nil
}

type Requests struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]*models.Request
	// BeforeTransition runs inside Transition before the status check, so
	// tests can simulate a concurrent decision.
	BeforeTransition func(r *models.Request)
}

func NewRequests() *Requests {
	return &Requests{requests: make(map[primitive.ObjectID]*models.Request)}
}

func (f *Requests) Create(ctx context.Context, request *models.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	request.ID = primitive.NewObjectID()
	cp := *request
	f.requests[request.ID] = &cp
	return nil
}

func (f *Requests) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *Requests) Transition(ctx context.Context, id primitive.ObjectID, from, to string) (*models.Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, store.ErrStatusConflict
	}
	if f.BeforeTransition != nil {
		f.BeforeTransition(r)
	}
	if r.Status != from {
		return nil, store.ErrStatusConflict
	}
	r.Status = to
	r.UpdatedAt = time.Now()
	cp := *r
	return &cp, nil
}

func (f *Requests) ListByDonor(ctx context.Context, donorID primitive.ObjectID) ([]models.Request, error) {
	return f.list(func(r *models.Request) bool { return r.DonorID == donorID }), nil
}

func (f *Requests) ListByReceiver(ctx context.Context, receiverID primitive.ObjectID) ([]models.Request, error) {
	return f.list(func(r *models.Request) bool { return r.ReceiverID == receiverID }), nil
}

func (f *Requests) list(match func(*models.Request) bool) []models.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Request{}
	for _, r := range f.requests {
		if match(r) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}

type Feedback struct {
	mu   sync.Mutex
	rows []models.Feedback
}

func (f *Feedback) Create(ctx context.Context, feedback *models.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	feedback.ID = primitive.NewObjectID()
	f.rows = append(f.rows, *feedback)
	return nil
}

func (f *Feedback) List(ctx context.Context, donorID *primitive.ObjectID) ([]models.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Feedback{}
	for i := len(f.rows) - 1; i >= 0; i-- {
		if donorID == nil || f.rows[i].DonorID == *donorID {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

type Notifications struct {
	mu   sync.Mutex
	rows []*models.Notification
	// FailFor makes Create fail for one user.
	FailFor primitive.ObjectID
}

func (f *Notifications) Create(ctx context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.FailFor.IsZero() && n.UserID == f.FailFor {
		return errors.New("write failed")
	}
	n.ID = primitive.NewObjectID()
	cp := *n
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *Notifications) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Notification{}
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == userID {
			out = append(out, *f.rows[i])
		}
	}
	return out, nil
}

func (f *Notifications) MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.rows {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			cp := *n
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *Notifications) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.rows {
		if row.UserID == userID && !row.IsRead {
			row.IsRead = true
			n++
		}
	}
	return n, nil
}

func (f *Notifications) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.rows {
		if row.UserID == userID && !row.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *Notifications) ForUser(userID primitive.ObjectID) []models.Notification {
	out, _ := f.ListByUser(context.Background(), userID)
	return out
}

// Len returns the number of stored notifications.
func (f *Notifications) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}
