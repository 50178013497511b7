package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/budget"
	"fintrack/internal/cache"
	"fintrack/internal/core"
)

// MonthTotaler sums the expenses of a calendar month. *ExpenseService implements it.
type MonthTotaler interface {
	MonthTotal(ctx context.Context, year, month int) (decimal.Decimal, error)
}

type BudgetService struct {
	store    BudgetStore
	expenses MonthTotaler
	statuses *cache.LRUCache[core.BudgetSnapshot]
}

func NewBudgetService(store BudgetStore, expenses MonthTotaler, cacheTTL time.Duration) *BudgetService {
	return &BudgetService{
		store:    store,
		expenses: expenses,
		statuses: cache.NewLRUCache[core.BudgetSnapshot](12, cacheTTL),
	}
}

// Invalidate drops cached statuses. Register it with ExpenseService.OnChange.
func (s *BudgetService) Invalidate() {
	s.statuses.Clear()
}

// Cleaner exposes the status cache for periodic expiry sweeps.
func (s *BudgetService) Cleaner() cache.Cleaner {
	return s.statuses
}

func (s *BudgetService) Get(ctx context.Context) (core.Budget, error) {
	b, err := s.store.GetBudget(ctx)
	if errors.Is(err, core.ErrNotFound) {
		return core.Budget{}, ErrNoBudget
	}
	return b, err
}

// Set stores a new monthly limit.
func (s *BudgetService) Set(ctx context.Context, limit decimal.Decimal) (core.Budget, error) {
	limit = core.RoundAmount(limit)
	if err := budget.ValidateLimit(limit); err != nil {
		return core.Budget{}, err
	}

	saved, err := s.store.SaveBudget(ctx, core.Budget{MonthlyLimit: limit})
	if err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}
	s.Invalidate()
	return saved, nil
}

// Status evaluates the spending of now's calendar month against the limit.
func (s *BudgetService) Status(ctx context.Context, now time.Time) (core.BudgetSnapshot, error) {
	key := now.Format("2006-01")
	if snap, ok := s.statuses.Get(key); ok {
		return snap, nil
	}

	b, err := s.Get(ctx)
	if err != nil {
		return core.BudgetSnapshot{}, err
	}
	spent, err := s.expenses.MonthTotal(ctx, now.Year(), int(now.Month()))
	if err != nil {
		return core.BudgetSnapshot{}, fmt.Errorf("month total: %w", err)
	}

	snap, err := budget.Evaluate(b.MonthlyLimit, spent)
	if err != nil {
		return core.BudgetSnapshot{}, err
	}
	if snap.Status != core.StatusHealthy {
		slog.InfoContext(ctx, "Budget threshold reached",
			"month", key,
			"status", snap.Status,
			"percentage_used", snap.DisplayPercentage().String())
	}

	s.statuses.Set(key, snap)
	return snap, nil
}
