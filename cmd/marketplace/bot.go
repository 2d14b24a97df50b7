package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/tg-marketplace/internal/backend"
	"github.com/iliyamo/tg-marketplace/internal/bot"
	"github.com/iliyamo/tg-marketplace/internal/config"
	"github.com/iliyamo/tg-marketplace/internal/session"
	"github.com/iliyamo/tg-marketplace/internal/telegram"
)

func botCmd(a *app) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram chat front-end",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.ValidateBot(); err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()
			return a.runBot(ctx, workers)
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 8, "messages handled concurrently")
	return cmd
}

func (a *app) runBot(ctx context.Context, workers int) error {
	flush, err := a.startTracing(ctx, "bot")
	if err != nil {
		return err
	}
	defer flush()

	rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if err != nil {
		return err
	}
	defer rdb.Close()

	tr, err := telegram.New(a.cfg.BotToken, a.log,
		telegram.WithRate(a.cfg.SendRPS, 5),
		telegram.WithWorkers(workers),
	)
	if err != nil {
		return err
	}

	b := bot.New(backend.New(a.cfg.BackendURL, 15*time.Second), session.NewStore(rdb), tr, a.log)
	a.log.Info("bot polling for updates")
	return tr.Run(ctx, b.Handle)
}
