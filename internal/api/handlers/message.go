package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"dm-service/internal/api/middleware"
	"dm-service/internal/message"
	"dm-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	store message.Store
}

func NewMessageHandler(store message.Store) *MessageHandler {
	return &MessageHandler{store: store}
}

// History returns every message exchanged between the authenticated user
// and :userId, ascending by creation time.
func (h *MessageHandler) History(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "no token")
		return
	}

	peerID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid userId")
		return
	}

	messages, err := h.store.QueryBetween(c.Request.Context(), identity.UserID, uint(peerID))
	if err != nil {
		slog.Error("failed to query messages", "userID", identity.UserID, "peerID", peerID, "error", err)
		response.Error(c, http.StatusInternalServerError, "internal server error")
		return
	}
	response.OK(c, messages)
}
