package handlers

import (
	"net/http"

	"sharebite/internal/middleware"
	"sharebite/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RequestHandler struct {
	requestService *services.RequestService
	urls           imageURLBuilder
	log            logrus.FieldLogger
}

type CreateRequestRequest struct {
	DonationID        string     `json:"donationId"`
	PeopleCount       looseValue `json:"peopleCount"`
	FoodPreference    string     `json:"foodPreference"`
	RequestedLocation string     `json:"requestedLocation"`
	Logistics         string     `json:"logistics" binding:"omitempty,oneof=pickup delivery"`
	DeliveryAddress   string     `json:"deliveryAddress"`
}

func NewRequestHandler(requestService *services.RequestService, publicBaseURL string, log logrus.FieldLogger) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
		urls:           imageURLBuilder{baseURL: publicBaseURL},
		log:            log,
	}
}

func actor(c *gin.Context) services.Actor {
	userID, role, _ := middleware.CurrentUser(c)
	return services.Actor{ID: userID, Role: role}
}

func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "donationId and valid peopleCount are required.")
		return
	}

	request, err := h.requestService.Create(c.Request.Context(), actor(c), services.CreateRequestInput{
		DonationID:        req.DonationID,
		PeopleCount:       req.PeopleCount.Int(),
		FoodPreference:    req.FoodPreference,
		RequestedLocation: req.RequestedLocation,
		Logistics:         req.Logistics,
		DeliveryAddress:   req.DeliveryAddress,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, request)
}

func (h *RequestHandler) GetRequests(c *gin.Context) {
	views, err := h.requestService.List(c.Request.Context(), actor(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	for i := range views {
		if d := views[i].Donation; d != nil {
			d.ImageURL = h.urls.build(c, d.Image)
		}
	}
	c.JSON(http.StatusOK, views)
}

func (h *RequestHandler) ApproveRequest(c *gin.Context) {
	res, err := h.requestService.Approve(c.Request.Context(), actor(c), c.Param("requestId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *RequestHandler) DeclineRequest(c *gin.Context) {
	res, err := h.requestService.Decline(c.Request.Context(), actor(c), c.Param("requestId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
