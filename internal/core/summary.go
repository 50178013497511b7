package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Year       int
	Month      int // 1-12
	Total      decimal.Decimal
	ByCategory []CategoryAmount
}

// TotalAmount sums the amounts of the given expenses.
func TotalAmount(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// SummarizeByCategory totals expenses per category name, largest first.
// Ties are broken by name so the output is stable.
func SummarizeByCategory(expenses []Expense) []CategoryAmount {
	byName := map[string]decimal.Decimal{}
	for _, e := range expenses {
		byName[e.Category] = byName[e.Category].Add(e.Amount)
	}
	out := make([]CategoryAmount, 0, len(byName))
	for name, amount := range byName {
		out = append(out, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// NewMonthOverview builds the overview of one month from its expenses.
func NewMonthOverview(year, month int, expenses []Expense) MonthOverview {
	return MonthOverview{
		Year:       year,
		Month:      month,
		Total:      TotalAmount(expenses),
		ByCategory: SummarizeByCategory(expenses),
	}
}
