package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"dm-service/internal/api/middleware"
	"dm-service/internal/auth"
	"dm-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service *auth.Service
}

func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// cookieMaxAge keeps the token cookie session-scoped enough for the web
// client while letting the JWT expiry be the real boundary.
const cookieMaxAge = 7 * 24 * 3600

func setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(middleware.TokenCookie, token, cookieMaxAge, "/", "", true, true)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "username and password are required")
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			response.Error(c, http.StatusBadRequest, "username already exists")
			return
		}
		slog.Error("failed to register user", "username", req.Username, "error", err)
		response.Error(c, http.StatusInternalServerError, "error registering user")
		return
	}

	setTokenCookie(c, token)
	c.JSON(http.StatusCreated, auth.AuthResponse{ID: user.ID, Username: user.Username})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "username and password are required")
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	setTokenCookie(c, token)
	response.OK(c, auth.AuthResponse{ID: user.ID, Username: user.Username})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", true, true)
	response.OK(c, "ok")
}

func (h *AuthHandler) Profile(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "no token")
		return
	}
	response.OK(c, identity)
}
