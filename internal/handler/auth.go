package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tg-marketplace/internal/api"
	"github.com/iliyamo/tg-marketplace/internal/service"
)

// AuthHandler exposes registration, login and access token refresh.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(a *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: a}
}

// Register creates an account. It does not log the user in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req api.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Auth.Register(ctx, req.Nickname, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, u.Summary())
}

// Login accepts a nickname or email and returns a token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req api.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	if strings.TrimSpace(req.NicknameOrEmail) == "" || req.Password == "" {
		return badRequest("nickname_or_email and password are required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, pair, err := h.Auth.Login(ctx, req.NicknameOrEmail, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.AuthResponse{User: u.Summary(), Access: pair.Access, Refresh: pair.Refresh})
}

// Refresh returns a new access token for a valid refresh token. The refresh
// token itself is not rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req api.RefreshRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest("refresh_token required")
	}
	tok, err := h.Auth.Refresh(strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.AccessResponse{Access: tok})
}
