package auth

import (
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/scrypt"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// MaxPasswordLength is the bcrypt input limit in bytes.
const MaxPasswordLength = 72

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// HashPassword returns a bcrypt hash with a per-call random salt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a password against a stored hash. Besides bcrypt it
// accepts the legacy "salt:hex" scrypt format (N=16384, r=8, p=1, 64 byte key)
// so accounts imported from the previous backend can still log in.
func VerifyPassword(password, stored string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return verifyLegacyScrypt(password, stored)
}

// CompareDummy runs a bcrypt comparison against a throwaway hash so that a
// login for an unknown account costs the same as one with a wrong password.
func CompareDummy(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("sharebite-dummy-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// IsLegacyHash reports whether stored should be rehashed with bcrypt.
func IsLegacyHash(stored string) bool {
	return stored != "" && !strings.HasPrefix(stored, "$2")
}

func verifyLegacyScrypt(password, stored string) bool {
	salt, expectedHex, ok := strings.Cut(stored, ":")
	if !ok || salt == "" || expectedHex == "" {
		return false
	}

	expected, err := hex.DecodeString(expectedHex)
	if err != nil {
		return false
	}

	derived, err := scrypt.Key([]byte(password), []byte(salt), 16384, 8, 1, 64)
	if err != nil {
		return false
	}

	if len(derived) != len(expected) {
		return false
	}
	return subtle.ConstantTimeCompare(derived, expected) == 1
}
