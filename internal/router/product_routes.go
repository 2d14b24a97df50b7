package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tg-marketplace/internal/handler"
)

// RegisterProducts registers /products. Reads are public and cached; every
// write needs a token and clears the cache.
func RegisterProducts(e *echo.Echo, p *handler.ProductHandler, g Guards) {
	g = g.orDefaults()
	grp := e.Group("/products")
	grp.GET("", p.List, g.Cache)
	grp.GET("/:id", p.Get, g.Cache)

	grp.POST("", p.Create, g.Auth, g.Invalidate)
	grp.PATCH("/:id", p.Update, g.Auth, g.Invalidate)
	grp.DELETE("/:id", p.Delete, g.Auth, g.Invalidate)
	grp.POST("/purchase/:id", p.Purchase, g.Auth, g.WriteLimit, g.Invalidate)
}
