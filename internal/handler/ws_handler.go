package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/studyhive/studyhive-backend/internal/common"
	"github.com/studyhive/studyhive-backend/internal/middleware"
	"github.com/studyhive/studyhive-backend/internal/ws"
	"github.com/studyhive/studyhive-backend/pkg/jwt"
)

// WSHandler handles WebSocket connections
type WSHandler struct {
	hub            *ws.Hub
	jwtManager     *jwt.Manager
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *ws.Hub, jwtManager *jwt.Manager, allowedOrigins string) *WSHandler {
	h := &WSHandler{
		hub:            hub,
		jwtManager:     jwtManager,
		allowedOrigins: parseOrigins(allowedOrigins),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// parseOrigins parses comma-separated origins string
func parseOrigins(origins string) []string {
	if origins == "" {
		return nil
	}
	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// checkOrigin validates the request origin against allowed origins
func (h *WSHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // Same-origin requests don't have Origin header
	}

	// If no allowed origins configured, allow all (development mode)
	if len(h.allowedOrigins) == 0 {
		return true
	}

	for _, allowed := range h.allowedOrigins {
		if origin == allowed {
			return true
		}
	}

	return false
}

// Connect handles GET /ws — WebSocket upgrade.
// The credential is passed at handshake time as a bearer-like token
// in the "token" query parameter, not via cookie. An invalid or
// missing token fails the handshake; there is no structured error
// channel after the upgrade beyond disconnect.
// @Summary Realtime chat WebSocket
// @Tags realtime
// @Router /ws [get]
func (h *WSHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "missing token", nil)
		return
	}

	claims, err := h.jwtManager.VerifyToken(token)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "invalid token", err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	middleware.WSConnectionOpened()
	client := ws.NewClient(h.hub, conn, claims.UserID)
	h.hub.Register(client)

	go client.WritePump()
	go func() {
		defer middleware.WSConnectionClosed()
		client.ReadPump()
	}()
}
