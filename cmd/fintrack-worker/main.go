package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	mem "fintrack/internal/sheets/memory"
	"fintrack/internal/worker"
)

func main() {
	cfg, logger := cli.MustStart("fintrack-worker")

	mirror, err := newMirror(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize sheets mirror", log.FieldError, err, "mirror", cfg.SheetsMirror)
		os.Exit(1)
	}
	if mirror == nil {
		logger.Info("Sheets mirror disabled (SHEETS_MIRROR=none), nothing to do")
		return
	}
	logger.Info("Sheets mirror initialized", "mirror", cfg.SheetsMirror)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	syncWorker := worker.NewSyncWorker(repo, mirror, cfg.SyncBatchSize)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	// Recover from missed messages or worker downtime before consuming.
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			return ignoreCancel(amqpClient.Consume(gctx, syncWorker.Handlers()))
		})
	} else {
		logger.Info("AMQP disabled - relying on the periodic pending scan", "interval", cfg.SyncInterval)
	}

	g.Go(func() error {
		return ignoreCancel(syncWorker.Run(gctx, cfg.SyncInterval))
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

// newMirror returns nil when mirroring is disabled.
func newMirror(ctx context.Context, cfg *config.Config) (sheets.Mirror, error) {
	switch cfg.SheetsMirror {
	case config.MirrorNone:
		return nil, nil
	case config.MirrorMemory:
		return mem.New(), nil
	case config.MirrorGoogle:
		client, err := gsheet.NewClient(ctx, gsheet.Options{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown sheets mirror %q", cfg.SheetsMirror)
	}
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
