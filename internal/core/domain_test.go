package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrequency(t *testing.T) {
	cases := []struct {
		in   string
		want Frequency
		ok   bool
	}{
		{"DAILY", Daily, true},
		{"weekly", Weekly, true},
		{" Biweekly ", Biweekly, true},
		{"MONTHLY", Monthly, true},
		{"quarterly", Quarterly, true},
		{"YEARLY", Yearly, true},
		{"HOURLY", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseFrequency(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			assert.Equal(t, tc.want, got)
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidFrequency, tc.in)
	}
}

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateJSON(t *testing.T) {
	type wrapper struct {
		Start Date `json:"start"`
		End   Date `json:"end"`
	}

	out, err := json.Marshal(wrapper{Start: NewDate(2024, 2, 29)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2024-02-29","end":null}`, string(out))

	var in wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2025-01-31","end":""}`), &in))
	assert.True(t, in.Start.Equal(NewDate(2025, 1, 31)))
	assert.True(t, in.End.IsEmpty())

	err = json.Unmarshal([]byte(`{"start":"31/01/2025"}`), &in)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDateOfAndMonthBounds(t *testing.T) {
	d := DateOf(time.Date(2024, 2, 10, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, "2024-02-10", d.String())

	first, last := d.MonthBounds()
	assert.Equal(t, "2024-02-01", first.String())
	assert.Equal(t, "2024-02-29", last.String())

	_, last = NewDate(2025, 12, 5).MonthBounds()
	assert.Equal(t, "2025-12-31", last.String())
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Amount:      decimal.RequireFromString("12.50"),
		CategoryID:  1,
		Date:        NewDate(2025, 1, 1),
		Description: "ok",
	}
	require.NoError(t, good.Validate())

	cases := map[string]struct {
		mutate func(*Expense)
		want   error
	}{
		"zero amount":     {func(e *Expense) { e.Amount = decimal.Zero }, ErrInvalidAmount},
		"negative amount": {func(e *Expense) { e.Amount = decimal.NewFromInt(-1) }, ErrInvalidAmount},
		"zero date":       {func(e *Expense) { e.Date = Date{} }, ErrInvalidDate},
		"no category":     {func(e *Expense) { e.CategoryID = 0 }, ErrMissingCategory},
		"long desc":       {func(e *Expense) { e.Description = strings.Repeat("x", 501) }, ErrDescriptionTooLong},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			e := good
			tc.mutate(&e)
			assert.True(t, errors.Is(e.Validate(), tc.want), "got %v", e.Validate())
		})
	}
}

func TestRecurringExpenseValidate(t *testing.T) {
	good := RecurringExpense{
		Amount:      decimal.NewFromInt(15),
		CategoryID:  2,
		Description: "Streaming",
		Frequency:   Monthly,
		StartDate:   NewDate(2025, 1, 31),
	}
	require.NoError(t, good.Validate())

	sameDay := good
	sameDay.EndDate = good.StartDate
	require.NoError(t, sameDay.Validate())

	cases := map[string]struct {
		mutate func(*RecurringExpense)
		want   error
	}{
		"bad frequency": {func(r *RecurringExpense) { r.Frequency = "HOURLY" }, ErrInvalidFrequency},
		"zero amount":   {func(r *RecurringExpense) { r.Amount = decimal.Zero }, ErrInvalidAmount},
		"no start":      {func(r *RecurringExpense) { r.StartDate = Date{} }, ErrInvalidDate},
		"end before":    {func(r *RecurringExpense) { r.EndDate = NewDate(2025, 1, 30) }, ErrEndBeforeStart},
		"no category":   {func(r *RecurringExpense) { r.CategoryID = 0 }, ErrMissingCategory},
		"long desc":     {func(r *RecurringExpense) { r.Description = strings.Repeat("é", 501) }, ErrDescriptionTooLong},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := good
			tc.mutate(&r)
			assert.ErrorIs(t, r.Validate(), tc.want)
		})
	}
}

func TestCategoryValidate(t *testing.T) {
	assert.NoError(t, Category{Name: "Groceries"}.Validate())
	assert.ErrorIs(t, Category{Name: "  "}.Validate(), ErrEmptyCategoryName)
	assert.ErrorIs(t, Category{Name: strings.Repeat("a", 51)}.Validate(), ErrCategoryNameTooLong)
	assert.ErrorIs(t, Category{Name: "a", Description: strings.Repeat("d", 256)}.Validate(), ErrCategoryDescTooLong)
}

func TestBudgetValidate(t *testing.T) {
	assert.NoError(t, Budget{MonthlyLimit: decimal.NewFromInt(1000)}.Validate())
	assert.ErrorIs(t, Budget{MonthlyLimit: decimal.Zero}.Validate(), ErrInvalidBudgetLimit)
	assert.ErrorIs(t, Budget{MonthlyLimit: decimal.NewFromInt(-5)}.Validate(), ErrInvalidBudgetLimit)
}

func TestSummarizeByCategory(t *testing.T) {
	expenses := []Expense{
		{Category: "Groceries", Amount: decimal.RequireFromString("10.10")},
		{Category: "Utilities", Amount: decimal.RequireFromString("80")},
		{Category: "Groceries", Amount: decimal.RequireFromString("20.20")},
		{Category: "Other", Amount: decimal.RequireFromString("30.30")},
	}

	got := SummarizeByCategory(expenses)
	require.Len(t, got, 3)
	assert.Equal(t, "Utilities", got[0].Name)
	assert.Equal(t, "Groceries", got[1].Name)
	assert.True(t, got[1].Amount.Equal(decimal.RequireFromString("30.30")))
	assert.Equal(t, "Other", got[2].Name)

	ov := NewMonthOverview(2025, 3, expenses)
	assert.True(t, ov.Total.Equal(decimal.RequireFromString("140.60")))
}
