package auth

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/scrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)

	assert.True(t, VerifyPassword("secret1", hash))
	assert.False(t, VerifyPassword("secret2", hash))
	assert.False(t, IsLegacyHash(hash))
}

func TestHashPasswordUsesUniqueSalt(t *testing.T) {
	a, err := HashPassword("same-password")
	require.NoError(t, err)
	b, err := HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerifyLegacyScryptHash(t *testing.T) {
	salt := "0123456789abcdef0123456789abcdef"
	key, err := scrypt.Key([]byte("legacy-pass"), []byte(salt), 16384, 8, 1, 64)
	require.NoError(t, err)
	stored := salt + ":" + hex.EncodeToString(key)

	assert.True(t, IsLegacyHash(stored))
	assert.True(t, VerifyPassword("legacy-pass", stored))
	assert.False(t, VerifyPassword("wrong-pass", stored))
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	for _, stored := range []string{"", "nosalt", ":abcd", "salt:", "salt:zz"} {
		assert.False(t, VerifyPassword("whatever", stored), stored)
	}
}

func TestCompareDummyAcceptsAnyPassword(t *testing.T) {
	assert.NotPanics(t, func() {
		CompareDummy("secret1")
		CompareDummy("")
	})
	assert.NotEmpty(t, dummyHash)
}
