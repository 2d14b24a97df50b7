// Command marketplace runs the marketplace processes: the HTTP api (serve),
// the chat front-end (bot), the notification dispatcher (dispatch) and the
// schema migration (migrate).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/tg-marketplace/internal/config"
	"github.com/iliyamo/tg-marketplace/internal/logger"
	"github.com/iliyamo/tg-marketplace/internal/observability"
)

var version = "dev"

// app is what every subcommand starts from.
type app struct {
	cfg config.Config
	log *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		envFile  string
		logLevel string
		a        app
	)
	root := &cobra.Command{
		Use:           "marketplace",
		Short:         "Telegram marketplace: api, chat bot and notification dispatcher",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadEnvFile(envFile); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			log, err := logger.New(cfg.LogLevel, cfg.LogPretty)
			if err != nil {
				return err
			}
			a = app{cfg: cfg, log: log.With(zap.String("process", cmd.Name()))}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "KEY=VALUE file loaded before reading the environment")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "overrides LOG_LEVEL")

	root.AddCommand(serveCmd(&a), botCmd(&a), dispatchCmd(&a), migrateCmd(&a))
	return root
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// startTracing installs the tracer provider and returns its flush.
func (a *app) startTracing(ctx context.Context, process string) (func(), error) {
	shutdown, err := observability.SetupOTel(ctx, a.cfg.OTEL, process)
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			a.log.Warn("tracer shutdown", zap.Error(err))
		}
	}, nil
}
