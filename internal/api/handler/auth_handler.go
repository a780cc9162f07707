package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/evchat/chat-gateway/internal/api/metrics"
	"github.com/evchat/chat-gateway/internal/core/domain"
	"github.com/evchat/chat-gateway/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	chatService ports.ChatService
}

func NewAuthHandler(authService ports.AuthService, chatService ports.ChatService) *AuthHandler {
	return &AuthHandler{authService: authService, chatService: chatService}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string                 `json:"token"`
	User  domain.SessionIdentity `json:"user"`
}

// Login authenticates a user, opens a chat session, and returns a session token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, identity, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrTooManyAttempts) {
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		}
		return err
	}

	h.chatService.Open(identity)
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.ActiveSessions.Inc()

	return c.JSON(http.StatusOK, loginResponse{Token: token, User: identity})
}

// Logout destroys the caller's session.
func (h *AuthHandler) Logout(c echo.Context) error {
	username, err := ctxUsername(c)
	if err != nil {
		return err
	}

	h.chatService.Logout(username)
	metrics.ActiveSessions.Dec()

	return c.NoContent(http.StatusNoContent)
}
