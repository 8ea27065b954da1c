package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry is the fixed lifetime of an access token.
const TokenExpiry = 7 * 24 * time.Hour

var (
	ErrEmptySecret  = errors.New("token secret is empty")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the payload of a signed access token. Subject holds the user id.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 signed tokens. It holds no mutable
// state and is safe for concurrent use.
type TokenManager struct {
	secretKey []byte
	duration  time.Duration
	now       func() time.Time
}

func NewTokenManager(secretKey string, duration time.Duration) (*TokenManager, error) {
	if secretKey == "" {
		return nil, ErrEmptySecret
	}
	if duration == 0 {
		duration = TokenExpiry
	}
	return &TokenManager{
		secretKey: []byte(secretKey),
		duration:  duration,
		now:       time.Now,
	}, nil
}

// GenerateToken signs a token for the given user.
func (m *TokenManager) GenerateToken(userID, email, role string) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks structure, signature and expiry. The HMAC comparison
// inside jwt's HS256 verifier is constant time (hmac.Equal).
func (m *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		claims.Subject = claims.UserID
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}

	return claims, nil
}
