package handlers

import (
	"log/slog"
	"net/http"

	"dm-service/internal/auth"
	"dm-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *auth.Service
}

func NewUserHandler(service *auth.Service) *UserHandler {
	return &UserHandler{service: service}
}

// People lists every known account so the client can open a conversation
// with anyone, online or not.
func (h *UserHandler) People(c *gin.Context) {
	people, err := h.service.People(c.Request.Context())
	if err != nil {
		slog.Error("failed to list people", "error", err)
		response.Error(c, http.StatusInternalServerError, "internal server error")
		return
	}
	response.OK(c, people)
}
