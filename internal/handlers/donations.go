package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"sharebite/internal/middleware"
	"sharebite/internal/models"
	"sharebite/internal/services"
	"sharebite/internal/store"
	"sharebite/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type DonationHandler struct {
	donationService *services.DonationService
	urls            imageURLBuilder
	log             logrus.FieldLogger
}

type CreateDonationRequest struct {
	FoodName   string     `json:"foodName"`
	Quantity   looseValue `json:"quantity"`
	Location   string     `json:"location"`
	ExpiryTime string     `json:"expiryTime"`
	Latitude   looseValue `json:"latitude"`
	Longitude  looseValue `json:"longitude"`
}

// DonationResponse flattens the stored point for the client.
type DonationResponse struct {
	models.Donation
	ImageURL  string   `json:"imageUrl"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func NewDonationHandler(donationService *services.DonationService, publicBaseURL string, log logrus.FieldLogger) *DonationHandler {
	return &DonationHandler{
		donationService: donationService,
		urls:            imageURLBuilder{baseURL: publicBaseURL},
		log:             log,
	}
}

// CreateDonation accepts JSON or a multipart form with an optional "image"
// file.
func (h *DonationHandler) CreateDonation(c *gin.Context) {
	userID, role, _ := middleware.CurrentUser(c)

	var (
		req   CreateDonationRequest
		image io.Reader
	)
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		req = CreateDonationRequest{
			FoodName:   c.PostForm("foodName"),
			Quantity:   looseValue(c.PostForm("quantity")),
			Location:   c.PostForm("location"),
			ExpiryTime: c.PostForm("expiryTime"),
			Latitude:   looseValue(c.PostForm("latitude")),
			Longitude:  looseValue(c.PostForm("longitude")),
		}

		if fh, err := c.FormFile("image"); err == nil {
			file, err := fh.Open()
			if err != nil {
				respondError(c, h.log, err)
				return
			}
			defer file.Close()
			image = file
		} else if !errors.Is(err, http.ErrMissingFile) {
			badRequest(c, "Could not read uploaded image.")
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "foodName, quantity, expiryTime are required.")
		return
	}

	donation, err := h.donationService.Create(c.Request.Context(), services.Actor{ID: userID, Role: role}, services.CreateDonationInput{
		FoodName:     req.FoodName,
		Quantity:     req.Quantity.Int(),
		LocationText: req.Location,
		Location:     utils.ParsePoint(req.Latitude.String(), req.Longitude.String()),
		ExpiryTime:   req.ExpiryTime,
		Image:        image,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, h.toResponse(c, *donation))
}

// GetDonations lists active donations. lat, lng and radius_km narrow the
// list to a circle when all three are given.
func (h *DonationHandler) GetDonations(c *gin.Context) {
	var area *store.Area
	if c.Query("lat") != "" || c.Query("lng") != "" || c.Query("radius_km") != "" {
		point := utils.ParsePoint(c.Query("lat"), c.Query("lng"))
		radius, err := strconv.ParseFloat(c.DefaultQuery("radius_km", "10"), 64)
		if point == nil || err != nil {
			badRequest(c, "lat, lng and radius_km must be valid numbers.")
			return
		}
		area = &store.Area{Lat: point.Lat(), Lng: point.Lng(), RadiusKm: radius}
	}

	donations, err := h.donationService.ListActive(c.Request.Context(), area)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	out := make([]DonationResponse, 0, len(donations))
	for _, d := range donations {
		out = append(out, h.toResponse(c, d))
	}
	c.JSON(http.StatusOK, out)
}

func (h *DonationHandler) toResponse(c *gin.Context, d models.Donation) DonationResponse {
	resp := DonationResponse{
		Donation: d,
		ImageURL: h.urls.build(c, d.Image),
	}
	if d.Location != nil {
		lat, lng := d.Location.Lat(), d.Location.Lng()
		resp.Latitude, resp.Longitude = &lat, &lng
	}
	return resp
}

// imageURLBuilder turns stored relative image paths into absolute URLs.
type imageURLBuilder struct {
	baseURL string
}

func (b imageURLBuilder) build(c *gin.Context, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if b.baseURL != "" {
		return b.baseURL + path
	}

	host := c.GetHeader("X-Forwarded-Host")
	if host == "" {
		host = c.Request.Host
	}
	if host == "" {
		return path
	}

	proto := c.GetHeader("X-Forwarded-Proto")
	if proto == "" {
		proto = "http"
		if c.Request.TLS != nil {
			proto = "https"
		}
	}
	return proto + "://" + host + path
}
