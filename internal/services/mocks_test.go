package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"fintrack/internal/core"
)

type MockExpenseStore struct {
	mock.Mock
}

func (m *MockExpenseStore) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(core.Expense), args.Error(1)
}

func (m *MockExpenseStore) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(core.Expense), args.Error(1)
}

func (m *MockExpenseStore) GetExpenseVersion(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExpenseStore) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(core.Expense), args.Error(1)
}

func (m *MockExpenseStore) DeleteExpense(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockExpenseStore) ListExpenses(ctx context.Context, filter core.ExpenseFilter) ([]core.Expense, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]core.Expense), args.Error(1)
}

func (m *MockExpenseStore) FireOccurrence(ctx context.Context, e core.Expense, def core.RecurringExpense) (core.Expense, error) {
	args := m.Called(ctx, e, def)
	return args.Get(0).(core.Expense), args.Error(1)
}

type MockCategoryStore struct {
	mock.Mock
}

func (m *MockCategoryStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]core.Category), args.Error(1)
}

func (m *MockCategoryStore) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(core.Category), args.Error(1)
}

func (m *MockCategoryStore) GetCategoryByName(ctx context.Context, name string) (core.Category, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(core.Category), args.Error(1)
}

func (m *MockCategoryStore) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(core.Category), args.Error(1)
}

func (m *MockCategoryStore) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(core.Category), args.Error(1)
}

func (m *MockCategoryStore) DeleteCategory(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCategoryStore) CategoryUsage(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

type MockRecurringStore struct {
	mock.Mock
}

func (m *MockRecurringStore) CreateRecurring(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error) {
	args := m.Called(ctx, re)
	if fn, ok := args.Get(0).(func(core.RecurringExpense) core.RecurringExpense); ok {
		return fn(re), args.Error(1)
	}
	return args.Get(0).(core.RecurringExpense), args.Error(1)
}

func (m *MockRecurringStore) GetRecurring(ctx context.Context, id int64) (core.RecurringExpense, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(core.RecurringExpense), args.Error(1)
}

func (m *MockRecurringStore) ListRecurring(ctx context.Context, activeOnly bool) ([]core.RecurringExpense, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]core.RecurringExpense), args.Error(1)
}

func (m *MockRecurringStore) ListDueRecurring(ctx context.Context, today core.Date) ([]core.RecurringExpense, error) {
	args := m.Called(ctx, today)
	return args.Get(0).([]core.RecurringExpense), args.Error(1)
}

func (m *MockRecurringStore) SaveRecurring(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error) {
	args := m.Called(ctx, re)
	if fn, ok := args.Get(0).(func(core.RecurringExpense) core.RecurringExpense); ok {
		return fn(re), args.Error(1)
	}
	return args.Get(0).(core.RecurringExpense), args.Error(1)
}

func (m *MockRecurringStore) DeleteRecurring(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockBudgetStore struct {
	mock.Mock
}

func (m *MockBudgetStore) GetBudget(ctx context.Context) (core.Budget, error) {
	args := m.Called(ctx)
	return args.Get(0).(core.Budget), args.Error(1)
}

func (m *MockBudgetStore) SaveBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	args := m.Called(ctx, b)
	return args.Get(0).(core.Budget), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishExpenseSync(ctx context.Context, id, version int64) error {
	return m.Called(ctx, id, version).Error(0)
}

func (m *MockPublisher) PublishExpenseDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordOccurrence(ctx context.Context, e core.Expense, def core.RecurringExpense) (core.Expense, error) {
	args := m.Called(ctx, e, def)
	return args.Get(0).(core.Expense), args.Error(1)
}

type MockTotaler struct {
	mock.Mock
}

func (m *MockTotaler) MonthTotal(ctx context.Context, year, month int) (decimal.Decimal, error) {
	args := m.Called(ctx, year, month)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y, m, d int) core.Date {
	return core.NewDate(y, m, d)
}
