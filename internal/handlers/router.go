package handlers

import (
	"net/http"
	"time"

	"sharebite/internal/middleware"
	"sharebite/internal/realtime"
	"sharebite/internal/services"
	"sharebite/pkg/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	AllowedOrigins []string
	PublicBaseURL  string
	// UploadDir is served under /uploads when set.
	UploadDir    string
	MaxBodyBytes int64
	// Limiter guards the auth endpoints; nil disables rate limiting.
	Limiter middleware.Limiter
	Tokens  *auth.TokenManager
	Log     logrus.FieldLogger
}

type Services struct {
	Auth          *services.AuthService
	Donations     *services.DonationService
	Requests      *services.RequestService
	Feedback      *services.FeedbackService
	Notifications *services.NotificationService
	Hub           *realtime.Hub
}

func NewRouter(cfg RouterConfig, svc Services) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(cfg.Log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.SecurityHeaders())
	if cfg.MaxBodyBytes > 0 {
		router.Use(middleware.RequestSizeLimit(cfg.MaxBodyBytes))
	}

	if cfg.UploadDir != "" {
		router.Static("/uploads", cfg.UploadDir)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ok":        true,
			"timestamp": time.Now().Unix(),
		})
	})

	authHandler := NewAuthHandler(svc.Auth, cfg.Log)
	donationHandler := NewDonationHandler(svc.Donations, cfg.PublicBaseURL, cfg.Log)
	requestHandler := NewRequestHandler(svc.Requests, cfg.PublicBaseURL, cfg.Log)
	feedbackHandler := NewFeedbackHandler(svc.Feedback, cfg.Log)
	notificationHandler := NewNotificationHandler(svc.Notifications, cfg.Log)

	if svc.Hub != nil {
		wsHandler := NewWebSocketHandler(svc.Hub, cfg.Tokens, cfg.AllowedOrigins, cfg.Log)
		router.GET("/ws", wsHandler.HandleWebSocket)
	}

	authMW := middleware.AuthMiddleware(cfg.Tokens)

	api := router.Group("/api")
	{
		// Публичные маршруты
		authGroup := api.Group("/auth")
		if cfg.Limiter != nil {
			authGroup.Use(middleware.RateLimit(cfg.Limiter, cfg.Log))
		}
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)

		api.GET("/auth/me", authMW, authHandler.Me)

		api.GET("/donations", donationHandler.GetDonations)
		api.POST("/donations", authMW, donationHandler.CreateDonation)

		// Защищенные маршруты
		protected := api.Group("")
		protected.Use(authMW)
		{
			protected.POST("/requests", requestHandler.CreateRequest)
			protected.GET("/requests", requestHandler.GetRequests)

			approvals := protected.Group("/approvals")
			approvals.PATCH("/:requestId", requestHandler.ApproveRequest)
			approvals.PUT("/:requestId", requestHandler.ApproveRequest)
			approvals.PATCH("/:requestId/decline", requestHandler.DeclineRequest)
			approvals.PUT("/:requestId/decline", requestHandler.DeclineRequest)

			protected.POST("/feedback", feedbackHandler.CreateFeedback)
			protected.GET("/feedback", feedbackHandler.GetFeedback)

			notifications := protected.Group("/notifications")
			notifications.GET("", notificationHandler.GetUserNotifications)
			notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
			notifications.PATCH("/read-all", notificationHandler.MarkAllAsRead)
			notifications.PATCH("/:id/read", notificationHandler.MarkAsRead)
		}
	}

	return router
}
