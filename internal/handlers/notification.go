// internal/handlers/notification.go
package handlers

import (
	"net/http"

	"sharebite/internal/middleware"
	"sharebite/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
	log                 logrus.FieldLogger
}

func NewNotificationHandler(notificationService *services.NotificationService, log logrus.FieldLogger) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, log: log}
}

func (h *NotificationHandler) GetUserNotifications(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)

	notifications, err := h.notificationService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)

	notification, err := h.notificationService.MarkAsRead(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, notification)
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)

	updated, err := h.notificationService.MarkAllAsRead(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "All notifications marked as read.",
		"updated": updated,
	})
}

func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)

	count, err := h.notificationService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unreadCount": count})
}
