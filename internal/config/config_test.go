package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg := Load()

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "sharebite", cfg.DatabaseName)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 168, cfg.JWTExpirationHours)
	assert.Equal(t, 10000.0, cfg.NearbyRadiusMeters)
	assert.Equal(t, "local", cfg.UploadBackend)
	assert.Equal(t, int64(5<<20), cfg.UploadMaxBytes)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("NEARBY_RADIUS_METERS", "2500")
	t.Setenv("PUBLIC_BASE_URL", "https://api.sharebite.example/")

	cfg := Load()

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "s3cr3t", cfg.JWTSecret)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.False(t, cfg.RateLimitEnabled)
	assert.Equal(t, 2500.0, cfg.NearbyRadiusMeters)
	assert.Equal(t, "https://api.sharebite.example", cfg.PublicBaseURL)
}

func TestProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	cfg := Load()

	assert.Empty(t, cfg.JWTSecret)
	assert.Error(t, cfg.Validate())
}

func TestValidateS3Backend(t *testing.T) {
	t.Setenv("UPLOAD_BACKEND", "s3")
	t.Setenv("S3_BUCKET", "")

	cfg := Load()
	assert.Error(t, cfg.Validate())

	cfg.S3Bucket = "sharebite-images"
	assert.NoError(t, cfg.Validate())
}

func TestInvalidNumbersFallBackToDefaults(t *testing.T) {
	t.Setenv("MONGO_TIMEOUT", "ten")
	t.Setenv("EXPIRY_SWEEP_INTERVAL", "soon")

	cfg := Load()

	assert.Equal(t, 10, cfg.MongoTimeout)
	assert.Equal(t, 5*time.Minute, cfg.ExpirySweepInterval)
}
