// cmd/server/main.go - ShareBite backend server
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sharebite/internal/config"
	"sharebite/internal/database"
	"sharebite/internal/events"
	"sharebite/internal/handlers"
	"sharebite/internal/middleware"
	"sharebite/internal/realtime"
	"sharebite/internal/services"
	"sharebite/internal/storage"
	"sharebite/internal/store"
	"sharebite/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Версия приложения
var appVersion = "1.0.0"

func main() {
	cfg := config.Load()
	log := setupLogging(cfg)

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped with error")
	}
	log.Info("ShareBite backend exited")
}

func run(cfg *config.Config, log *logrus.Logger) error {
	log.WithFields(logrus.Fields{
		"version":  appVersion,
		"env":      cfg.Env,
		"database": cfg.DatabaseName,
		"origins":  cfg.AllowedOrigins,
	}).Info("starting ShareBite backend")

	db, err := database.NewMongoDB(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	// Создаем индексы в MongoDB
	indexCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.MongoTimeout)*time.Second)
	if err := db.CreateIndexes(indexCtx); err != nil {
		log.WithError(err).Warn("failed to create some indexes")
	}
	cancel()

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return fmt.Errorf("creating token manager: %w", err)
	}

	images, err := newImageStore(cfg)
	if err != nil {
		return err
	}

	users := store.NewUserStore(db.Collection(database.UsersCollection))
	donations := store.NewDonationStore(db.Collection(database.DonationsCollection))
	requests := store.NewRequestStore(db.Collection(database.RequestsCollection))
	feedback := store.NewFeedbackStore(db.Collection(database.FeedbackCollection))
	notifications := store.NewNotificationStore(db.Collection(database.NotificationsCollection))

	// WebSocket Hub для real-time уведомлений
	hub := realtime.NewHub(log)
	go hub.Run()
	defer hub.Shutdown()

	bus := events.NewLocalBus(log)

	notificationService := services.NewNotificationService(notifications, users, hub, services.NotificationOptions{
		NearbyRadiusMeters: cfg.NearbyRadiusMeters,
		FanoutConcurrency:  cfg.FanoutConcurrency,
	}, log)
	notificationService.Register(bus)

	donationService := services.NewDonationService(donations, images, bus, cfg.UploadMaxBytes, log)

	limiter, closeLimiter := newLimiter(cfg, log)
	defer closeLimiter()

	router := handlers.NewRouter(handlers.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		PublicBaseURL:  cfg.PublicBaseURL,
		UploadDir:      localUploadDir(cfg),
		MaxBodyBytes:   cfg.UploadMaxBytes + 1<<20,
		Limiter:        limiter,
		Tokens:         tokens,
		Log:            log,
	}, handlers.Services{
		Auth:          services.NewAuthService(users, tokens, log),
		Donations:     donationService,
		Requests:      services.NewRequestService(requests, donations, bus, log),
		Feedback:      services.NewFeedbackService(feedback, requests, bus, log),
		Notifications: notificationService,
		Hub:           hub,
	})

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go donationService.RunExpirySweeper(sweepCtx, cfg.ExpirySweepInterval)

	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("HTTP server: %w", err)
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("server forced to shutdown")
	}
	stopSweeper()

	// Let in-flight notification writes finish before Mongo disconnects.
	bus.Wait()
	return nil
}

// setupLogging настраивает логирование в зависимости от окружения
func setupLogging(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func newImageStore(cfg *config.Config) (storage.ImageStore, error) {
	if cfg.UploadBackend == "s3" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return storage.NewS3Store(ctx, cfg.S3Bucket, cfg.AWSRegion)
	}
	return storage.NewLocalStore(cfg.UploadDir, "/uploads")
}

func localUploadDir(cfg *config.Config) string {
	if cfg.UploadBackend == "local" {
		return cfg.UploadDir
	}
	return ""
}

// newLimiter picks the rate limiter backend. Redis is used when REDIS_ADDR
// is set so limits hold across instances.
func newLimiter(cfg *config.Config, log logrus.FieldLogger) (middleware.Limiter, func()) {
	if !cfg.RateLimitEnabled {
		return nil, func() {}
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("redis unreachable, rate limiter will fail open until it recovers")
		}
		return middleware.NewRedisLimiter(client, cfg.RateLimitRequests, cfg.RateLimitWindow), func() { client.Close() }
	}

	rl := middleware.NewMemoryLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	return rl, rl.Stop
}
