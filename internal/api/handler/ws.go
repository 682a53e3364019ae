package handler

import (
	"cinematch/backend/internal/chathub"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten for production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection and registers the client with the
// hub. The token comes from the Authorization header or, for browser
// clients that cannot set headers on websocket upgrades, the token query
// parameter.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	tokenString, ok := bearerToken(c)
	if !ok {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token missing"})
		return
	}

	userID, err := h.parseUserID(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token or expired"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to upgrade connection"})
		return
	}

	client := chathub.NewWebSocketClient(h.Hub, userID, conn)
	h.Hub.Register(client)
	client.Run()
}
