package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sharebite/internal/models"
	"sharebite/internal/store"
	"sharebite/pkg/auth"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Role         string
	Phone        string
	Address      string
	City         string
	Pincode      string
	LocationName string
	Location     *models.Location
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	users  UserRepository
	tokens *auth.TokenManager
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewAuthService(users UserRepository, tokens *auth.TokenManager, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		log:    log,
		now:    time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	role, ok := models.NormalizeRole(in.Role)
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" || !ok {
		return nil, validationError("name, email, password and role are required.")
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, validationError(fmt.Sprintf("Password must be at least %d characters.", auth.MinPasswordLength))
	}
	if len(in.Password) > auth.MaxPasswordLength {
		return nil, validationError(fmt.Sprintf("Password must be at most %d bytes.", auth.MaxPasswordLength))
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, conflictError("Email already registered. Please login.")
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("looking up email: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		City:         strings.TrimSpace(in.City),
		Pincode:      strings.TrimSpace(in.Pincode),
		LocationName: strings.TrimSpace(in.LocationName),
		Location:     in.Location,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Two registrations raced past the lookup; the unique index caught it.
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, conflictError("Email already registered. Please login.")
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id": user.ID.Hex(),
		"role":    user.Role,
	}).Info("user registered")

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationError("Email and password are required.")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			auth.CompareDummy(password)
			return nil, unauthorizedError("Invalid email or password.")
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, unauthorizedError("Invalid email or password.")
	}

	// Accounts created before the switch to bcrypt get upgraded on their
	// next successful login.
	if auth.IsLegacyHash(user.PasswordHash) {
		if hash, err := auth.HashPassword(password); err == nil {
			if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
				s.log.WithError(err).WithField("user_id", user.ID.Hex()).Warn("failed to upgrade password hash")
			} else {
				user.PasswordHash = hash
			}
		}
	}

	return s.issue(user)
}

// Me returns the profile of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundError("User not found.")
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(user.ID.Hex(), user.Email, user.Role.String())
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
