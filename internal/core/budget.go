package core

import "github.com/shopspring/decimal"

const (
	StatusHealthy    BudgetStatus = "HEALTHY"
	StatusWarning    BudgetStatus = "WARNING"
	StatusOverBudget BudgetStatus = "OVER_BUDGET"
)

// BudgetStatus classifies spending against the monthly limit.
type BudgetStatus string

// BudgetSnapshot is the evaluated state of a month's spending.
// PercentageUsed is neither clamped nor rounded; use DisplayPercentage for output.
type BudgetSnapshot struct {
	MonthlyLimit   decimal.Decimal
	TotalSpent     decimal.Decimal
	Remaining      decimal.Decimal
	PercentageUsed decimal.Decimal
	Status         BudgetStatus
}

// DisplayPercentage truncates to two decimals so that the rendered value
// never crosses a threshold the status did not.
func (s BudgetSnapshot) DisplayPercentage() decimal.Decimal {
	return s.PercentageUsed.Truncate(2)
}
