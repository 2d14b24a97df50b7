package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/tg-marketplace/internal/database"
)

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the MySQL schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.ValidateAPI(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			db, err := database.Open(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(ctx, db, database.Schema); err != nil {
				return err
			}
			a.log.Info("schema up to date", zap.Int("statements", len(database.Schema)))
			return nil
		},
	}
}
