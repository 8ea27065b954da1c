package services

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"sharebite/internal/models"
	"sharebite/internal/store/storetest"
	"sharebite/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/scrypt"
)

func newAuthService(t *testing.T) (*AuthService, *storetest.Users, *auth.TokenManager) {
	t.Helper()
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	users := storetest.NewUsers()
	return NewAuthService(users, tokens, quietLogger()), users, tokens
}

func TestRegisterIssuesTokenForNormalisedUser(t *testing.T) {
	svc, users, tokens := newAuthService(t)

	res, err := svc.Register(context.Background(), RegisterInput{
		Name:     "  Asha ",
		Email:    " Asha@Example.COM ",
		Password: "secret1",
		Role:     " Volunteer ",
		City:     " Pune ",
		Location: models.NewPoint(18.52, 73.85),
	})
	require.NoError(t, err)

	assert.Equal(t, "Asha", res.User.Name)
	assert.Equal(t, "asha@example.com", res.User.Email)
	assert.Equal(t, models.RoleAdmin, res.User.Role)
	assert.Equal(t, "Pune", res.User.City)
	assert.NotEqual(t, "secret1", res.User.PasswordHash)

	claims, err := tokens.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID.Hex(), claims.Subject)
	assert.Equal(t, "admin", claims.Role)

	stored, err := users.FindByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.True(t, auth.VerifyPassword("secret1", stored.PasswordHash))
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newAuthService(t)

	tests := []struct {
		name string
		in   RegisterInput
		msg  string
	}{
		{"missing name", RegisterInput{Email: "a@b.c", Password: "secret1", Role: "donor"}, "name, email, password and role are required."},
		{"unknown role", RegisterInput{Name: "A", Email: "a@b.c", Password: "secret1", Role: "chef"}, "name, email, password and role are required."},
		{"short password", RegisterInput{Name: "A", Email: "a@b.c", Password: "12345", Role: "donor"}, "Password must be at least 6 characters."},
		{"password over bcrypt limit", RegisterInput{Name: "A", Email: "a@b.c", Password: strings.Repeat("x", 80), Role: "donor"}, "Password must be at most 72 bytes."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthService(t)
	in := RegisterInput{Name: "A", Email: "dup@example.com", Password: "secret1", Role: "donor"}

	_, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	in.Email = "DUP@example.com"
	_, err = svc.Register(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "Email already registered. Please login.", err.Error())
}

func TestLogin(t *testing.T) {
	svc, _, _ := newAuthService(t)
	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "R", Email: "r@example.com", Password: "secret1", Role: "receiver",
	})
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), " R@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleReceiver, res.User.Role)
	assert.NotEmpty(t, res.Token)

	_, err = svc.Login(context.Background(), "r@example.com", "wrong-password")
	assert.Equal(t, KindUnauthorized, KindOf(err))

	_, err = svc.Login(context.Background(), "nobody@example.com", "secret1")
	assert.Equal(t, KindUnauthorized, KindOf(err))
	assert.Equal(t, "Invalid email or password.", err.Error())

	_, err = svc.Login(context.Background(), "", "secret1")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestLoginUpgradesLegacyHash(t *testing.T) {
	svc, users, _ := newAuthService(t)

	salt := "0123456789abcdef0123456789abcdef"
	key, err := scrypt.Key([]byte("legacy-pass"), []byte(salt), 16384, 8, 1, 64)
	require.NoError(t, err)

	user := &models.User{
		Name:         "Old",
		Email:        "old@example.com",
		PasswordHash: salt + ":" + hex.EncodeToString(key),
		Role:         models.RoleDonor,
	}
	require.NoError(t, users.Create(context.Background(), user))

	_, err = svc.Login(context.Background(), "old@example.com", "legacy-pass")
	require.NoError(t, err)

	stored, err := users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$2"))
	assert.True(t, auth.VerifyPassword("legacy-pass", stored.PasswordHash))
}

func TestMe(t *testing.T) {
	svc, _, _ := newAuthService(t)
	res, err := svc.Register(context.Background(), RegisterInput{
		Name: "D", Email: "d@example.com", Password: "secret1", Role: "donor",
	})
	require.NoError(t, err)

	user, err := svc.Me(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "d@example.com", user.Email)

	_, err = svc.Me(context.Background(), primitive.NewObjectID())
	assert.Equal(t, KindNotFound, KindOf(err))
}
