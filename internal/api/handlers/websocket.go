package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"dm-service/internal/api/middleware"
	"dm-service/internal/auth"
	ws "dm-service/internal/websocket"
	"dm-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1")
	},
}

type WSHandler struct {
	hub      *ws.Hub
	verifier *auth.Service
}

func NewWSHandler(hub *ws.Hub, verifier *auth.Service) *WSHandler {
	return &WSHandler{hub: hub, verifier: verifier}
}

// HandleWebSocket authenticates the handshake and hands the socket to
// the hub. An absent or invalid token rejects the handshake outright; an
// anonymous socket is never accepted, registered, or counted as online.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	tokenString := middleware.ExtractToken(c)
	if tokenString == "" {
		response.Error(c, http.StatusUnauthorized, "no token")
		return
	}

	identity, err := h.verifier.VerifyToken(tokenString)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "invalid token")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "userID", identity.UserID, "error", err)
		return
	}

	client := ws.NewClient(h.hub, conn, identity.UserID, identity.Username)
	slog.Info("websocket connection established", "clientID", client.ID(), "userID", identity.UserID, "username", identity.Username)
	client.Start()
}
