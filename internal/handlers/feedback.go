package handlers

import (
	"net/http"

	"sharebite/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type FeedbackHandler struct {
	feedbackService *services.FeedbackService
	log             logrus.FieldLogger
}

type CreateFeedbackRequest struct {
	RequestID string     `json:"requestId"`
	Rating    looseValue `json:"rating"`
	Comment   string     `json:"comment"`
}

func NewFeedbackHandler(feedbackService *services.FeedbackService, log logrus.FieldLogger) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService, log: log}
}

func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	var req CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "requestId is required")
		return
	}

	feedback, err := h.feedbackService.Create(c.Request.Context(), actor(c), services.CreateFeedbackInput{
		RequestID: req.RequestID,
		Rating:    req.Rating.Int(),
		Comment:   req.Comment,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, feedback)
}

func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	rows, err := h.feedbackService.List(c.Request.Context(), actor(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
