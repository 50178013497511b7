package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

var groceries = core.Category{ID: 1, Name: "Groceries", IsDefault: true}

func newExpenseService(pub Publisher) (*ExpenseService, *MockExpenseStore, *MockCategoryStore) {
	store := new(MockExpenseStore)
	cats := new(MockCategoryStore)
	return NewExpenseService(store, cats, pub, time.Minute), store, cats
}

func TestExpenseService_Create(t *testing.T) {
	ctx := context.Background()
	pub := new(MockPublisher)
	svc, store, cats := newExpenseService(pub)

	cats.On("GetCategoryByName", ctx, "groceries").Return(groceries, nil)
	store.On("CreateExpense", ctx, mock.MatchedBy(func(e core.Expense) bool {
		return e.CategoryID == 1 && core.FormatAmount(e.Amount) == "12.35" && e.Description == "Market"
	})).Return(core.Expense{ID: 10, Amount: dec("12.35"), CategoryID: 1, Category: "Groceries"}, nil)
	pub.On("PublishExpenseSync", ctx, int64(10), int64(1)).Return(nil)

	changed := 0
	svc.OnChange(func() { changed++ })

	got, err := svc.Create(ctx, core.Expense{
		Amount:      dec("12.345"),
		Category:    "groceries",
		Date:        date(2025, 3, 1),
		Description: "  Market ",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.ID)
	assert.Equal(t, 1, changed)
	store.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestExpenseService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, store, cats := newExpenseService(nil)
	cats.On("GetCategory", ctx, int64(1)).Return(groceries, nil)
	cats.On("GetCategoryByName", ctx, "Nope").Return(core.Category{}, core.ErrNotFound)

	tests := []struct {
		name string
		in   core.Expense
		want error
	}{
		{"missing category", core.Expense{Amount: dec("1"), Date: date(2025, 1, 1)}, core.ErrMissingCategory},
		{"unknown category", core.Expense{Amount: dec("1"), Category: "Nope", Date: date(2025, 1, 1)}, ErrUnknownCategory},
		{"zero amount", core.Expense{Amount: dec("0"), CategoryID: 1, Date: date(2025, 1, 1)}, core.ErrInvalidAmount},
		{"rounds to zero", core.Expense{Amount: dec("0.004"), CategoryID: 1, Date: date(2025, 1, 1)}, core.ErrInvalidAmount},
		{"missing date", core.Expense{Amount: dec("1"), CategoryID: 1}, core.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsValidation(err))
		})
	}
	store.AssertNotCalled(t, "CreateExpense", mock.Anything, mock.Anything)
}

func TestExpenseService_PublishFailureDoesNotFailCreate(t *testing.T) {
	ctx := context.Background()
	pub := new(MockPublisher)
	svc, store, cats := newExpenseService(pub)

	cats.On("GetCategory", ctx, int64(1)).Return(groceries, nil)
	store.On("CreateExpense", ctx, mock.Anything).Return(core.Expense{ID: 4}, nil)
	pub.On("PublishExpenseSync", ctx, int64(4), int64(1)).Return(errors.New("circuit breaker is open"))

	_, err := svc.Create(ctx, core.Expense{Amount: dec("5"), CategoryID: 1, Date: date(2025, 2, 2)})
	assert.NoError(t, err)
}

func TestExpenseService_UpdatePublishesNewVersion(t *testing.T) {
	ctx := context.Background()
	pub := new(MockPublisher)
	svc, store, cats := newExpenseService(pub)

	existing := core.Expense{ID: 3, Amount: dec("1"), CategoryID: 1, Date: date(2025, 2, 2)}
	cats.On("GetCategory", ctx, int64(1)).Return(groceries, nil)
	store.On("GetExpense", ctx, int64(3)).Return(existing, nil)
	store.On("UpdateExpense", ctx, mock.Anything).Return(existing, nil)
	store.On("GetExpenseVersion", ctx, int64(3)).Return(int64(2), nil)
	pub.On("PublishExpenseSync", ctx, int64(3), int64(2)).Return(nil)

	_, err := svc.Update(ctx, existing)
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestExpenseService_UpdateMissing(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newExpenseService(nil)
	store.On("GetExpense", ctx, int64(99)).Return(core.Expense{}, core.ErrNotFound)

	_, err := svc.Update(ctx, core.Expense{ID: 99})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestExpenseService_Delete(t *testing.T) {
	ctx := context.Background()
	pub := new(MockPublisher)
	svc, store, _ := newExpenseService(pub)

	store.On("DeleteExpense", ctx, int64(8)).Return(nil)
	pub.On("PublishExpenseDelete", ctx, int64(8)).Return(nil)

	require.NoError(t, svc.Delete(ctx, 8))
	pub.AssertExpectations(t)

	store.On("DeleteExpense", ctx, int64(9)).Return(core.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, 9), core.ErrNotFound)
}

func TestExpenseService_ListRejectsInvertedRange(t *testing.T) {
	svc, _, _ := newExpenseService(nil)
	_, err := svc.List(context.Background(), core.ExpenseFilter{From: date(2025, 3, 1), To: date(2025, 2, 1)})
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}

func TestExpenseService_MonthTotalIsCachedUntilChange(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newExpenseService(nil)

	march := core.ExpenseFilter{From: date(2025, 3, 1), To: date(2025, 3, 31)}
	store.On("ListExpenses", ctx, march).Return([]core.Expense{
		{Amount: dec("10.10"), Category: "Groceries"},
		{Amount: dec("5.05"), Category: "Utilities"},
	}, nil)

	total, err := svc.MonthTotal(ctx, 2025, 3)
	require.NoError(t, err)
	assert.Equal(t, "15.15", core.FormatAmount(total))

	_, err = svc.MonthTotal(ctx, 2025, 3)
	require.NoError(t, err)
	store.AssertNumberOfCalls(t, "ListExpenses", 1)

	store.On("DeleteExpense", ctx, int64(1)).Return(nil)
	require.NoError(t, svc.Delete(ctx, 1))

	_, err = svc.MonthTotal(ctx, 2025, 3)
	require.NoError(t, err)
	store.AssertNumberOfCalls(t, "ListExpenses", 2)
}

func TestExpenseService_MonthlySummary(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newExpenseService(nil)

	feb := core.ExpenseFilter{From: date(2024, 2, 1), To: date(2024, 2, 29)}
	store.On("ListExpenses", ctx, feb).Return([]core.Expense{
		{Amount: dec("3"), Category: "Utilities"},
		{Amount: dec("10"), Category: "Groceries"},
		{Amount: dec("2"), Category: "Utilities"},
	}, nil)

	ov, err := svc.MonthlySummary(ctx, 2024, 2)
	require.NoError(t, err)
	assert.Equal(t, "15.00", core.FormatAmount(ov.Total))
	require.Len(t, ov.ByCategory, 2)
	assert.Equal(t, "Groceries", ov.ByCategory[0].Name)

	_, err = svc.MonthlySummary(ctx, 2024, 13)
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}

func TestExpenseService_RecordOccurrence(t *testing.T) {
	ctx := context.Background()
	pub := new(MockPublisher)
	svc, store, _ := newExpenseService(pub)

	e := core.Expense{Amount: dec("9.99"), CategoryID: 1, Date: date(2025, 1, 31), RecurringID: 2}
	def := core.RecurringExpense{ID: 2}
	store.On("FireOccurrence", ctx, e, def).Return(core.Expense{ID: 77}, nil)
	pub.On("PublishExpenseSync", ctx, int64(77), int64(1)).Return(nil)

	saved, err := svc.RecordOccurrence(ctx, e, def)
	require.NoError(t, err)
	assert.Equal(t, int64(77), saved.ID)
	pub.AssertExpectations(t)
}
