// Package server assembles the HTTP API: repositories, services, handlers,
// middleware and routes.
package server

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/tg-marketplace/internal/auth"
	"github.com/iliyamo/tg-marketplace/internal/config"
	"github.com/iliyamo/tg-marketplace/internal/handler"
	"github.com/iliyamo/tg-marketplace/internal/middleware"
	"github.com/iliyamo/tg-marketplace/internal/repository"
	"github.com/iliyamo/tg-marketplace/internal/router"
	"github.com/iliyamo/tg-marketplace/internal/search"
	"github.com/iliyamo/tg-marketplace/internal/service"
)

// Deps are the process-wide resources the API runs on. Redis is optional:
// without it rate limiting and response caching are off.
type Deps struct {
	DB        *sql.DB
	Redis     redis.UniversalClient
	Issuer    *auth.Issuer
	Publisher service.EventPublisher
	Searcher  search.Searcher // nil selects the catalogue searcher
	Log       *zap.Logger

	BcryptCost   int
	RewardAmount float64
	RateLimit    config.RateLimitConfig
	Cache        config.CacheConfig
}

// New returns a ready echo instance.
func New(d Deps) *echo.Echo {
	users := repository.NewUserRepo(d.DB)
	products := repository.NewProductRepo(d.DB)
	subs := repository.NewSubscriptionRepo(d.DB)

	productSvc := service.NewProductService(d.DB, users, products, d.Publisher, d.Log)
	searcher := d.Searcher
	if searcher == nil {
		searcher = search.NewCatalogSearcher(products)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log)
	e.Use(middleware.Metrics())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.Recover())

	var guards router.Guards
	guards.Auth = middleware.JWTAuth(d.Issuer)
	if d.Redis != nil {
		e.Use(middleware.Identify(d.Issuer))
		e.Use(middleware.RateLimit(d.RateLimit, d.Redis, d.Log))
		write := d.RateLimit.WithCapacity("write", d.RateLimit.WriteCapacity)
		guards.WriteLimit = middleware.RateLimit(write, d.Redis, d.Log,
			middleware.WithAnonSubject(middleware.AccountSubject("nickname_or_email", "nickname")))
		guards.Cache = middleware.Cache(d.Cache, d.Redis, d.Log)
		guards.Invalidate = middleware.InvalidateCache(d.Cache, d.Redis, d.Log)
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(service.NewAuthService(users, d.Issuer, d.BcryptCost)), guards)
	router.RegisterProducts(e, handler.NewProductHandler(productSvc, service.NewPurchaser(d.DB, users, products, d.Log)), guards)
	router.RegisterAccount(e, handler.NewAccountHandler(
		service.NewProfileService(users, products, subs),
		service.NewWalletService(d.DB, users, d.RewardAmount),
		service.NewSubscriptionService(users, subs),
	), guards)
	router.RegisterManage(e, handler.NewManageHandler(service.NewManageService(d.DB, productSvc), searcher), guards)
	return e
}
