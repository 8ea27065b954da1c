package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const devJWTSecret = "sharebite-dev-secret"

type Config struct {
	// Server настройки
	Port string
	Host string
	Env  string

	// MongoDB настройки
	MongoURI     string
	DatabaseName string
	MongoTimeout int

	// JWT настройки
	JWTSecret          string
	JWTExpirationHours int

	AllowedOrigins []string
	LogLevel       string

	// Загрузка изображений
	UploadDir      string
	UploadBackend  string
	UploadMaxBytes int64
	PublicBaseURL  string
	S3Bucket       string
	AWSRegion      string

	// Рассылка уведомлений
	NearbyRadiusMeters float64
	FanoutConcurrency  int

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RedisAddr         string

	ExpirySweepInterval time.Duration
}

func Load() *Config {
	// Загружаем переменные из .env файла
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("no .env file loaded: %v", err)
	}

	env := getEnv("ENV", "development")

	config := &Config{
		Port:                getEnv("PORT", "5000"),
		Host:                getEnv("HOST", "0.0.0.0"),
		Env:                 env,
		MongoURI:            getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		DatabaseName:        getEnv("DATABASE_NAME", "sharebite"),
		MongoTimeout:        getEnvAsInt("MONGO_TIMEOUT", 10),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTExpirationHours:  getEnvAsInt("JWT_EXPIRATION_HOURS", 7*24),
		AllowedOrigins:      getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		UploadDir:           getEnv("UPLOAD_DIR", "./uploads"),
		UploadBackend:       getEnv("UPLOAD_BACKEND", "local"),
		UploadMaxBytes:      int64(getEnvAsInt("UPLOAD_MAX_BYTES", 5<<20)),
		PublicBaseURL:       strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		NearbyRadiusMeters:  getEnvAsFloat("NEARBY_RADIUS_METERS", 10000),
		FanoutConcurrency:   getEnvAsInt("FANOUT_CONCURRENCY", 16),
		RateLimitEnabled:    getEnvAsBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests:   getEnvAsInt("RATE_LIMIT_REQUESTS", 20),
		RateLimitWindow:     getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		ExpirySweepInterval: getEnvAsDuration("EXPIRY_SWEEP_INTERVAL", 5*time.Minute),
	}

	if config.JWTSecret == "" && !config.IsProduction() {
		config.JWTSecret = devJWTSecret
	}

	return config
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks the preconditions the server refuses to start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in production")
	}
	if c.UploadBackend != "local" && c.UploadBackend != "s3" {
		return errors.New("UPLOAD_BACKEND must be local or s3")
	}
	if c.UploadBackend == "s3" && c.S3Bucket == "" {
		return errors.New("S3_BUCKET is required when UPLOAD_BACKEND=s3")
	}
	if c.NearbyRadiusMeters <= 0 {
		return errors.New("NEARBY_RADIUS_METERS must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
