// Package router wires handlers and middleware onto echo routes.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/tg-marketplace/internal/handler"
)

// Guards are the middleware chains routes pick from.
type Guards struct {
	Auth       echo.MiddlewareFunc // JWT access token
	WriteLimit echo.MiddlewareFunc // tighter rate limit for expensive writes
	Cache      echo.MiddlewareFunc // Redis response cache for public reads
	Invalidate echo.MiddlewareFunc // drops cached reads after catalogue writes
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func (g Guards) orDefaults() Guards {
	if g.WriteLimit == nil {
		g.WriteLimit = passthrough
	}
	if g.Cache == nil {
		g.Cache = passthrough
	}
	if g.Invalidate == nil {
		g.Invalidate = passthrough
	}
	return g
}

// RegisterRoutes registers the unauthenticated probes.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers /auth. Login is write-limited to slow down
// password guessing.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, g Guards) {
	g = g.orDefaults()
	grp := e.Group("/auth")
	grp.POST("/register", a.Register, g.WriteLimit)
	grp.POST("/login", a.Login, g.WriteLimit)
	grp.POST("/refresh", a.Refresh)
}

// RegisterManage registers /manage and /search.
func RegisterManage(e *echo.Echo, m *handler.ManageHandler, g Guards) {
	g = g.orDefaults()
	grp := e.Group("/manage")
	grp.GET("/health", m.Health)
	grp.GET("/users", m.Users)
	grp.POST("/populate/products", m.Populate, g.Auth, g.WriteLimit, g.Invalidate)

	e.GET("/search", m.Search, g.Cache)
}
