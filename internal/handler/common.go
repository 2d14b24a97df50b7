package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tg-marketplace/internal/api"
	"github.com/iliyamo/tg-marketplace/internal/apperr"
	"github.com/iliyamo/tg-marketplace/internal/middleware"
)

const requestTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// getUserID returns the caller set by middleware.JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
	if uid, ok := middleware.UserID(c); ok {
		return uid, nil
	}
	return 0, apperr.Auth("authentication required")
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid " + name)
	}
	return id, nil
}

func badRequest(msg string) error { return apperr.Validation(msg) }

// ErrorHandler renders every error as api.ErrorResponse. Classified errors
// keep their message; anything else is logged and reported as internal.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := http.StatusInternalServerError, api.ErrorResponse{}

		var he *echo.HTTPError
		switch {
		case errors.As(err, &he):
			status = he.Code
			body.Code = apperr.KindFromStatus(he.Code).Code()
			if msg, ok := he.Message.(string); ok {
				body.Error = msg
			} else {
				body.Error = http.StatusText(he.Code)
			}
		default:
			kind := apperr.KindOf(err)
			status = kind.HTTPStatus()
			body.Code = kind.Code()
			body.Error = apperr.Message(err)
			if kind == apperr.KindInternal {
				log.Error("request failed",
					zap.String("method", c.Request().Method),
					zap.String("path", c.Path()),
					zap.Error(err))
			}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Warn("error response not written", zap.Error(err))
		}
	}
}
