package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tg-marketplace/internal/handler"
)

// RegisterAccount registers the caller-scoped routes; all need a token.
func RegisterAccount(e *echo.Echo, a *handler.AccountHandler, g Guards) {
	e.GET("/profile", a.Profile, g.Auth)

	w := e.Group("/wallet", g.Auth)
	w.POST("/reward", a.Reward)
	w.POST("/clear", a.Clear)

	s := e.Group("/subscriptions", g.Auth)
	s.POST("/subscribe/:seller_id", a.Subscribe)
	s.POST("/unsubscribe/:seller_id", a.Unsubscribe)
}
