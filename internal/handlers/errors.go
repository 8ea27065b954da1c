package handlers

import (
	"net/http"

	"sharebite/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError maps service errors onto HTTP statuses. Anything that is not
// a *services.Error is logged and hidden behind a generic 500.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	status := http.StatusInternalServerError
	switch services.KindOf(err) {
	case services.KindValidation:
		status = http.StatusBadRequest
	case services.KindUnauthorized:
		status = http.StatusUnauthorized
	case services.KindForbidden:
		status = http.StatusForbidden
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindConflict:
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		log.WithError(err).WithFields(logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		}).Error("request failed")
		c.JSON(status, gin.H{"message": "Internal server error."})
		return
	}
	c.JSON(status, gin.H{"message": err.Error()})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}
