// Package budget evaluates monthly spending against a limit.
package budget

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Thresholds are percentages of the monthly limit.
const (
	WarningPercent    = 80
	OverBudgetPercent = 100
)

var (
	warningThreshold    = decimal.NewFromInt(WarningPercent)
	overBudgetThreshold = decimal.NewFromInt(OverBudgetPercent)
	hundred             = decimal.NewFromInt(100)
)

// ValidateLimit rejects non-positive monthly limits.
func ValidateLimit(limit decimal.Decimal) error {
	if !limit.IsPositive() {
		return core.ErrInvalidBudgetLimit
	}
	return nil
}

// Evaluate derives the remaining amount, the percentage used and the status
// of a month. The percentage is kept unrounded and may exceed 100; the
// remaining amount goes negative once the limit is passed.
func Evaluate(limit, spent decimal.Decimal) (core.BudgetSnapshot, error) {
	if err := ValidateLimit(limit); err != nil {
		return core.BudgetSnapshot{}, err
	}
	pct := spent.Mul(hundred).Div(limit)
	return core.BudgetSnapshot{
		MonthlyLimit:   limit,
		TotalSpent:     spent,
		Remaining:      limit.Sub(spent),
		PercentageUsed: pct,
		Status:         Classify(pct),
	}, nil
}

// Classify maps a percentage used to a status.
func Classify(pct decimal.Decimal) core.BudgetStatus {
	switch {
	case pct.GreaterThanOrEqual(overBudgetThreshold):
		return core.StatusOverBudget
	case pct.GreaterThanOrEqual(warningThreshold):
		return core.StatusWarning
	default:
		return core.StatusHealthy
	}
}
