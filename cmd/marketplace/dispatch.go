package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/iliyamo/tg-marketplace/internal/config"
	"github.com/iliyamo/tg-marketplace/internal/database"
	"github.com/iliyamo/tg-marketplace/internal/notify"
	"github.com/iliyamo/tg-marketplace/internal/queue"
	"github.com/iliyamo/tg-marketplace/internal/repository"
	"github.com/iliyamo/tg-marketplace/internal/session"
	"github.com/iliyamo/tg-marketplace/internal/telegram"
)

func dispatchCmd(a *app) *cobra.Command {
	var prefetch int
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Deliver new-product notifications to subscribers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.ValidateDispatcher(); err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()
			return a.dispatch(ctx, prefetch)
		},
	}
	cmd.Flags().IntVar(&prefetch, "prefetch", 4, "unacknowledged events held at once")
	return cmd
}

func (a *app) dispatch(ctx context.Context, prefetch int) error {
	flush, err := a.startTracing(ctx, "dispatch")
	if err != nil {
		return err
	}
	defer flush()

	db, err := database.Open(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if err != nil {
		return err
	}
	defer rdb.Close()

	tr, err := telegram.New(a.cfg.BotToken, a.log, telegram.WithRate(a.cfg.SendRPS, 5))
	if err != nil {
		return err
	}

	d := notify.NewDispatcher(
		repository.NewSubscriptionRepo(db),
		session.NewStore(rdb),
		tr,
		a.log,
		a.cfg.DispatchWorkers,
	)
	a.log.Info("dispatcher consuming product events")
	return queue.NewConsumer(a.cfg.AMQPURL, d, a.log, prefetch).Run(ctx)
}
