package middleware

import (
	"net/http"
	"strings"

	"sharebite/internal/models"
	"sharebite/pkg/auth"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextEmail  = "user_email"
)

func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token."})
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token."})
			return
		}

		// Старые токены могли не содержать роль
		role := models.UserRole(claims.Role)
		if !role.IsValid() {
			role = models.RoleReceiver
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextRole, role)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}

// CurrentUser returns the identity stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (primitive.ObjectID, models.UserRole, bool) {
	id, ok := c.Get(ContextUserID)
	if !ok {
		return primitive.NilObjectID, "", false
	}
	userID, ok := id.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, "", false
	}
	role, _ := c.Get(ContextRole)
	userRole, _ := role.(models.UserRole)
	return userID, userRole, true
}
