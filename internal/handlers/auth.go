// internal/handlers/auth.go

package handlers

import (
	"net/http"

	"sharebite/internal/middleware"
	"sharebite/internal/services"
	"sharebite/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	authService *services.AuthService
	log         logrus.FieldLogger
}

type RegisterRequest struct {
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Password     string     `json:"password"`
	Role         string     `json:"role"`
	Phone        string     `json:"phone"`
	Address      string     `json:"address"`
	City         string     `json:"city"`
	Pincode      string     `json:"pincode"`
	LocationName string     `json:"locationName"`
	Latitude     looseValue `json:"latitude"`
	Longitude    looseValue `json:"longitude"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func NewAuthHandler(authService *services.AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name, email, password and role are required.")
		return
	}

	res, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Role:         req.Role,
		Phone:        req.Phone,
		Address:      req.Address,
		City:         req.City,
		Pincode:      req.Pincode,
		LocationName: req.LocationName,
		Location:     utils.ParsePoint(req.Latitude.String(), req.Longitude.String()),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Email and password are required.")
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
