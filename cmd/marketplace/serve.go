package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/tg-marketplace/internal/auth"
	"github.com/iliyamo/tg-marketplace/internal/config"
	"github.com/iliyamo/tg-marketplace/internal/database"
	"github.com/iliyamo/tg-marketplace/internal/queue"
	"github.com/iliyamo/tg-marketplace/internal/search"
	"github.com/iliyamo/tg-marketplace/internal/server"
)

func serveCmd(a *app) *cobra.Command {
	var noRedis bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP api",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.ValidateAPI(); err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()
			return a.serve(ctx, !noRedis)
		},
	}
	cmd.Flags().BoolVar(&noRedis, "no-redis", false, "run without rate limiting and response caching")
	return cmd
}

func (a *app) serve(ctx context.Context, withRedis bool) error {
	flush, err := a.startTracing(ctx, "serve")
	if err != nil {
		return err
	}
	defer flush()

	db, err := database.Open(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	pub := queue.NewPublisher(a.cfg.AMQPURL, a.log)
	defer pub.Close()

	deps := server.Deps{
		DB:           db,
		Issuer:       auth.NewIssuer(a.cfg.JWTSecret, a.cfg.AccessTTL, a.cfg.RefreshTTL),
		Publisher:    pub,
		Log:          a.log,
		BcryptCost:   a.cfg.BcryptCost,
		RewardAmount: a.cfg.RewardAmount,
		RateLimit:    config.LoadRateLimitConfig(),
		Cache:        config.LoadCacheConfig(),
	}
	if a.cfg.SearchURL != "" {
		deps.Searcher = search.NewHTTPSearcher(a.cfg.SearchURL, 10*time.Second)
	}
	if withRedis {
		rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
		if err != nil {
			return err
		}
		defer rdb.Close()
		deps.Redis = rdb
	}

	e := server.New(deps)
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("api listening", zap.String("port", a.cfg.Port), zap.String("env", a.cfg.Env))
		if err := e.Start(":" + a.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("api shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
