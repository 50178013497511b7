package services

import (
	"context"

	"fintrack/internal/core"
)

// The services depend on these narrow views of storage.SQLiteRepository.

type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	GetExpenseVersion(ctx context.Context, id int64) (int64, error)
	UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	ListExpenses(ctx context.Context, filter core.ExpenseFilter) ([]core.Expense, error)
	// FireOccurrence stores an occurrence together with its advanced definition.
	FireOccurrence(ctx context.Context, e core.Expense, def core.RecurringExpense) (core.Expense, error)
}

type CategoryStore interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	GetCategoryByName(ctx context.Context, name string) (core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	CategoryUsage(ctx context.Context, id int64) (int64, error)
}

type RecurringStore interface {
	CreateRecurring(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error)
	GetRecurring(ctx context.Context, id int64) (core.RecurringExpense, error)
	ListRecurring(ctx context.Context, activeOnly bool) ([]core.RecurringExpense, error)
	ListDueRecurring(ctx context.Context, today core.Date) ([]core.RecurringExpense, error)
	SaveRecurring(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error)
	DeleteRecurring(ctx context.Context, id int64) error
}

type BudgetStore interface {
	GetBudget(ctx context.Context) (core.Budget, error)
	SaveBudget(ctx context.Context, b core.Budget) (core.Budget, error)
}

// Publisher announces expense changes to the sync worker.
type Publisher interface {
	PublishExpenseSync(ctx context.Context, id, version int64) error
	PublishExpenseDelete(ctx context.Context, id int64) error
}
