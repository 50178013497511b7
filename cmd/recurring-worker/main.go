package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintrack/internal/cli"
	"fintrack/internal/log"
)

func main() {
	cfg, logger := cli.MustStart("recurring-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Generated expenses are published so fintrack-worker mirrors them.
	publisher, closePublisher := cli.ConnectPublisher(logger, cfg)
	defer closePublisher()

	app, err := cli.NewApp(cfg, repo, publisher)
	if err != nil {
		logger.Error("Failed to build services", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	logger.Info("Recurring expense processor configured",
		"interval", cfg.RecurringProcessorInterval,
		"reactivation_policy", cfg.ReactivationPolicy,
		"sqlite_db", cfg.SQLiteDBPath)

	if err := app.Processor.Run(ctx, cfg.RecurringProcessorInterval, time.Now); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Recurring processor stopped", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Recurring-worker shutdown complete")
}
