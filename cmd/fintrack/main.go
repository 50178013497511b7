package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
)

const shutdownTimeout = 30 * time.Second

var flagWithRecurring bool

var rootCmd = &cobra.Command{
	Use:   "fintrack",
	Short: "Personal finance tracker API",
	Long:  "Serve the fintrack REST API, optionally running the recurring expense processor in-process.",
	RunE:  runServer,
}

func init() {
	rootCmd.Flags().BoolVar(&flagWithRecurring, "with-recurring", false, "Also run the recurring expense processor (env RUN_RECURRING)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, logger := cli.MustStart("fintrack")
	if !cmd.Flags().Changed("with-recurring") {
		flagWithRecurring = cfg.RunRecurring
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	publisher, closePublisher := cli.ConnectPublisher(logger, cfg)
	defer closePublisher()

	app, err := cli.NewApp(cfg, repo, publisher)
	if err != nil {
		logger.Error("Failed to build services", log.FieldError, err)
		return err
	}

	srv := apphttp.NewServer(cfg.Addr(), apphttp.Services{
		Expenses:   app.Expenses,
		Categories: app.Categories,
		Recurring:  app.Recurring,
		Processor:  app.Processor,
		Budget:     app.Budget,
	}, apphttp.Options{
		Logger:             logger,
		DB:                 repo,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", cfg.Addr(), "with_recurring", flagWithRecurring)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if flagWithRecurring {
		g.Go(func() error {
			logger.Info("Recurring processor running in-process", "interval", cfg.RecurringProcessorInterval)
			err := app.Processor.Run(gctx, cfg.RecurringProcessorInterval, time.Now)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
