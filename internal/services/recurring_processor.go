package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/schedule"
	"fintrack/internal/storage"
)

// RecurringSuffix marks expenses materialized from a recurring definition.
const RecurringSuffix = " (Recurring)"

// OccurrenceRecorder persists a materialized occurrence with its advanced
// definition. *ExpenseService implements it.
type OccurrenceRecorder interface {
	RecordOccurrence(ctx context.Context, e core.Expense, def core.RecurringExpense) (core.Expense, error)
}

// RecurringProcessor handles the automatic creation of expenses from recurring expense templates
type RecurringProcessor struct {
	store    RecurringStore
	recorder OccurrenceRecorder
}

func NewRecurringProcessor(store RecurringStore, recorder OccurrenceRecorder) *RecurringProcessor {
	return &RecurringProcessor{
		store:    store,
		recorder: recorder,
	}
}

// ProcessDue runs one tick: every due definition fires its current
// occurrence once and moves on by one period. A definition that missed
// several periods catches up one occurrence per tick. Failures are logged
// per definition and do not stop the tick.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, today core.Date) (int, error) {
	if p.store == nil || p.recorder == nil {
		return 0, errors.New("processor not properly initialized")
	}

	due, err := p.store.ListDueRecurring(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("list due recurring expenses: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring expenses",
		"candidates", len(due),
		"processing_date", today.String())

	created := 0
	for _, def := range due {
		if !schedule.IsDue(def, today) {
			continue
		}

		occurrence := core.Expense{
			Amount:      def.Amount,
			CategoryID:  def.CategoryID,
			Date:        def.NextOccurrence,
			Description: def.Description + RecurringSuffix,
			RecurringID: def.ID,
		}

		fired := def
		fired.LastFired = def.NextOccurrence
		advanced, moved := schedule.Advance(fired)

		_, err := p.recorder.RecordOccurrence(ctx, occurrence, advanced)
		if errors.Is(err, storage.ErrDuplicate) {
			// The occurrence exists already; only the bookkeeping is behind.
			if _, err := p.store.SaveRecurring(ctx, advanced); err != nil {
				slog.ErrorContext(ctx, "Failed to advance recurring expense",
					"recurring_id", def.ID,
					"error", err)
			}
			continue
		}
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create expense from recurring template",
				"recurring_id", def.ID,
				"description", def.Description,
				"error", err)
			continue
		}

		created++
		slog.InfoContext(ctx, "Created expense from recurring template",
			"recurring_id", def.ID,
			"date", occurrence.Date.String(),
			"amount", core.FormatAmount(def.Amount),
			"frequency", def.Frequency,
			"next_occurrence", advanced.NextOccurrence.String(),
			"exhausted", !moved)
	}

	slog.InfoContext(ctx, "Recurring expense processing complete",
		"created", created,
		"total_checked", len(due))

	return created, nil
}

// Run processes due expenses on start and then on every tick of interval
// until ctx is cancelled.
func (p *RecurringProcessor) Run(ctx context.Context, interval time.Duration, clock func() time.Time) error {
	if clock == nil {
		clock = time.Now
	}

	tick := func() {
		count, err := p.ProcessDue(ctx, core.DateOf(clock()))
		if err != nil {
			slog.ErrorContext(ctx, "Recurring processing failed", "error", err)
			return
		}
		slog.InfoContext(ctx, "Recurring processing tick complete",
			"expenses_created", count,
			"next_check", clock().Add(interval).Format("15:04:05"))
	}

	tick()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			tick()
		}
	}
}
