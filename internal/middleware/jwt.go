package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tg-marketplace/internal/api"
	"github.com/iliyamo/tg-marketplace/internal/apperr"
	"github.com/iliyamo/tg-marketplace/internal/auth"
)

// Verifier validates an access token and returns its user id.
// *auth.Issuer implements it.
type Verifier interface {
	Verify(token string) (uint64, error)
}

// JWTAuth rejects requests without a valid Bearer access token and stores
// the token's user id in the context for UserID. Expired and invalid tokens
// get different messages so clients know whether refreshing can help.
func JWTAuth(v Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return unauthorized(c, "missing bearer token")
			}

			uid, err := v.Verify(strings.TrimSpace(raw))
			switch {
			case errors.Is(err, auth.ErrExpired):
				return unauthorized(c, "token expired")
			case err != nil:
				return unauthorized(c, "invalid token")
			}

			c.Set(userIDKey, uid)
			return next(c)
		}
	}
}

// Identify records the caller's user id when the request carries a valid
// Bearer access token and lets every request through. Global middleware
// such as the rate limiter runs before route-level JWTAuth and relies on it
// to tell callers apart.
func Identify(v Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
			if ok && strings.TrimSpace(raw) != "" {
				if uid, err := v.Verify(strings.TrimSpace(raw)); err == nil {
					c.Set(userIDKey, uid)
				}
			}
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: msg, Code: apperr.KindAuth.Code()})
}
