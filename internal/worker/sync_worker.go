// Package worker keeps the spreadsheet mirror in step with SQLite.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// Store is the part of storage.SQLiteRepository the worker needs.
type Store interface {
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	GetPendingSyncExpenses(ctx context.Context, limit int) ([]storage.PendingSyncExpense, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// SyncWorker handles synchronization of expenses from SQLite to Google Sheets
type SyncWorker struct {
	store     Store
	mirror    sheets.Mirror
	batchSize int
}

func NewSyncWorker(store Store, mirror sheets.Mirror, batchSize int) *SyncWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	return &SyncWorker{
		store:     store,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// Handlers adapts the worker to the AMQP consumer.
func (w *SyncWorker) Handlers() amqp.Handlers {
	return amqp.Handlers{
		Sync:   w.HandleSyncMessage,
		Delete: w.HandleDeleteMessage,
	}
}

// HandleSyncMessage processes a single expense sync message from AMQP.
// The row always reflects the current database state, so a stale version
// is harmless.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.ExpenseSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	expense, err := w.store.GetExpense(ctx, msg.ID)
	if errors.Is(err, core.ErrNotFound) {
		slog.InfoContext(ctx, "Expense no longer exists, skipping sync", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}

	if err := w.syncExpense(ctx, expense); err != nil {
		return fmt.Errorf("sync expense to sheets: %w", err)
	}
	return nil
}

// HandleDeleteMessage processes a single expense delete message from AMQP
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.ExpenseDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID)

	if err := w.mirror.Delete(ctx, msg.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to delete expense from mirror",
			"id", msg.ID,
			"error", err,
			"timestamp", msg.Timestamp)
		return fmt.Errorf("delete expense: %w", err)
	}

	slog.InfoContext(ctx, "Successfully deleted expense from mirror", "id", msg.ID)
	return nil
}

// ProcessPendingExpenses syncs one batch of expenses that haven't been synced
// yet. This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingExpenses(ctx context.Context) (synced int, err error) {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck syncs a larger batch of pending expenses at worker startup
// to recover from missed AMQP messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	slog.InfoContext(ctx, "Startup sync completed", "synced", synced)
	return nil
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) (int, error) {
	pending, err := w.store.GetPendingSyncExpenses(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("get pending expenses: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending expenses", "count", len(pending))

	synced := 0
	for _, p := range pending {
		expense, err := w.store.GetExpense(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get expense", "id", p.ID, "error", err)
			if err := w.store.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			continue
		}

		if err := w.syncExpense(ctx, expense); err != nil {
			slog.ErrorContext(ctx, "Failed to sync expense", "id", p.ID, "error", err)
			continue
		}
		synced++
	}
	return synced, nil
}

// Run polls for pending expenses on every tick until ctx is cancelled.
func (w *SyncWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessPendingExpenses(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending sync failed", "error", err)
			}
		}
	}
}

func (w *SyncWorker) syncExpense(ctx context.Context, expense core.Expense) error {
	ref, err := w.mirror.Upsert(ctx, expense)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, expense.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", expense.ID, "error", markErr)
		}
		return fmt.Errorf("upsert to sheets: %w", err)
	}

	if err := w.store.MarkSynced(ctx, expense.ID); err != nil {
		// The row is written; the next pending scan rewrites it harmlessly.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", expense.ID, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced expense",
		"id", expense.ID,
		"sheets_ref", ref,
		"amount", core.FormatAmount(expense.Amount))
	return nil
}
