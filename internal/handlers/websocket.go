package handlers

import (
	"net/http"

	"sharebite/internal/realtime"
	"sharebite/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WebSocketHandler struct {
	hub      *realtime.Hub
	tokens   *auth.TokenManager
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

func NewWebSocketHandler(hub *realtime.Hub, tokens *auth.TokenManager, allowedOrigins []string, log logrus.FieldLogger) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &WebSocketHandler{
		hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
		log: log,
	}
}

// HandleWebSocket authenticates with the token query parameter, since
// browsers cannot set headers on a websocket handshake.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	claims, err := h.tokens.ValidateToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token."})
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token."})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	h.hub.Serve(conn, userID)
}
