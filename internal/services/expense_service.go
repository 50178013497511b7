package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

// ExpenseService orchestrates expense operations across SQLite and AMQP
type ExpenseService struct {
	store      ExpenseStore
	categories CategoryStore
	publisher  Publisher
	totals     cache.Cache[decimal.Decimal]

	mu        sync.RWMutex
	listeners []func()
}

// NewExpenseService wires the service. publisher may be nil, in which case
// no sync messages are sent.
func NewExpenseService(store ExpenseStore, categories CategoryStore, publisher Publisher, cacheTTL time.Duration) *ExpenseService {
	return &ExpenseService{
		store:      store,
		categories: categories,
		publisher:  publisher,
		totals:     cache.NewLRUCache[decimal.Decimal](24, cacheTTL),
	}
}

// OnChange registers fn to run after every successful expense mutation.
func (s *ExpenseService) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Cleaner exposes the totals cache for periodic expiry sweeps.
func (s *ExpenseService) Cleaner() cache.Cleaner {
	if c, ok := s.totals.(cache.Cleaner); ok {
		return c
	}
	return nil
}

func (s *ExpenseService) changed() {
	s.totals.Clear()

	s.mu.RLock()
	listeners := append([]func(){}, s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}

// Create validates and saves an expense locally, then publishes a sync message.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	cat, err := resolveCategory(ctx, s.categories, e.CategoryID, e.Category)
	if err != nil {
		return core.Expense{}, err
	}
	e.CategoryID = cat.ID
	e.Amount = core.RoundAmount(e.Amount)
	e.Description = strings.TrimSpace(e.Description)
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	saved, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.publishSync(ctx, saved.ID, 1)
	s.changed()
	return saved, nil
}

func (s *ExpenseService) Get(ctx context.Context, id int64) (core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

func (s *ExpenseService) Update(ctx context.Context, e core.Expense) (core.Expense, error) {
	if _, err := s.store.GetExpense(ctx, e.ID); err != nil {
		return core.Expense{}, err
	}
	cat, err := resolveCategory(ctx, s.categories, e.CategoryID, e.Category)
	if err != nil {
		return core.Expense{}, err
	}
	e.CategoryID = cat.ID
	e.Amount = core.RoundAmount(e.Amount)
	e.Description = strings.TrimSpace(e.Description)
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	saved, err := s.store.UpdateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	version, err := s.store.GetExpenseVersion(ctx, saved.ID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read expense version", "id", saved.ID, "error", err)
	} else {
		s.publishSync(ctx, saved.ID, version)
	}
	s.changed()
	return saved, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishExpenseDelete(ctx, id); err != nil {
			// The local delete stands; the mirror catches up on the next full sync.
			slog.ErrorContext(ctx, "Failed to publish delete message", "id", id, "error", err)
		}
	}
	s.changed()
	return nil
}

// List returns the expenses matching filter, newest first.
func (s *ExpenseService) List(ctx context.Context, filter core.ExpenseFilter) ([]core.Expense, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, fmt.Errorf("%w: end date before start date", core.ErrInvalidDate)
	}
	return s.store.ListExpenses(ctx, filter)
}

// CategorySummary totals the matching expenses per category, largest first.
func (s *ExpenseService) CategorySummary(ctx context.Context, filter core.ExpenseFilter) ([]core.CategoryAmount, error) {
	expenses, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return core.SummarizeByCategory(expenses), nil
}

// MonthlySummary returns the total and per-category breakdown of one month.
func (s *ExpenseService) MonthlySummary(ctx context.Context, year, month int) (core.MonthOverview, error) {
	expenses, err := s.monthExpenses(ctx, year, month)
	if err != nil {
		return core.MonthOverview{}, err
	}
	return core.NewMonthOverview(year, month, expenses), nil
}

// MonthTotal sums the expenses dated within the given month.
func (s *ExpenseService) MonthTotal(ctx context.Context, year, month int) (decimal.Decimal, error) {
	key := fmt.Sprintf("%04d-%02d", year, month)
	if total, ok := s.totals.Get(key); ok {
		return total, nil
	}

	expenses, err := s.monthExpenses(ctx, year, month)
	if err != nil {
		return decimal.Zero, err
	}
	total := core.TotalAmount(expenses)
	s.totals.Set(key, total)
	return total, nil
}

func (s *ExpenseService) monthExpenses(ctx context.Context, year, month int) ([]core.Expense, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month %d", core.ErrInvalidDate, month)
	}
	from, to := core.NewDate(year, month, 1).MonthBounds()
	return s.store.ListExpenses(ctx, core.ExpenseFilter{From: from, To: to})
}

// RecordOccurrence persists an occurrence materialized from def and the
// already advanced definition atomically.
func (s *ExpenseService) RecordOccurrence(ctx context.Context, e core.Expense, def core.RecurringExpense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	saved, err := s.store.FireOccurrence(ctx, e, def)
	if err != nil {
		return core.Expense{}, err
	}
	s.publishSync(ctx, saved.ID, 1)
	s.changed()
	return saved, nil
}

func (s *ExpenseService) publishSync(ctx context.Context, id, version int64) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping sync message", "id", id)
		return
	}
	// Don't fail the request - the expense is saved locally and the worker's
	// pending scan picks it up.
	if err := s.publisher.PublishExpenseSync(ctx, id, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "version", version, "error", err)
	}
}

// resolveCategory finds a category by ID, or by name when no ID is given.
func resolveCategory(ctx context.Context, store CategoryStore, id int64, name string) (core.Category, error) {
	var (
		cat core.Category
		err error
	)
	switch {
	case id > 0:
		cat, err = store.GetCategory(ctx, id)
	case strings.TrimSpace(name) != "":
		cat, err = store.GetCategoryByName(ctx, name)
	default:
		return core.Category{}, core.ErrMissingCategory
	}
	if errors.Is(err, core.ErrNotFound) {
		return core.Category{}, fmt.Errorf("%w: %s", ErrUnknownCategory, categoryRef(id, name))
	}
	return cat, err
}

func categoryRef(id int64, name string) string {
	if id > 0 {
		return fmt.Sprintf("#%d", id)
	}
	return fmt.Sprintf("%q", name)
}
