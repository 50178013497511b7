package budget

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name          string
		limit, spent  string
		wantStatus    core.BudgetStatus
		wantRemaining string
		wantPct       string
	}{
		{"nothing spent", "1000", "0", core.StatusHealthy, "1000", "0"},
		{"just below warning", "1000", "799.99", core.StatusHealthy, "200.01", "79.999"},
		{"warning boundary", "1000", "800", core.StatusWarning, "200", "80"},
		{"inside warning band", "1000", "999.99", core.StatusWarning, "0.01", "99.999"},
		{"limit reached", "1000", "1000", core.StatusOverBudget, "0", "100"},
		{"over the limit", "1000", "1200", core.StatusOverBudget, "-200", "120"},
		{"small limit", "0.01", "0.01", core.StatusOverBudget, "0", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(dec(tt.limit), dec(tt.spent))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.True(t, got.Remaining.Equal(dec(tt.wantRemaining)), "remaining = %s", got.Remaining)
			assert.True(t, got.PercentageUsed.Equal(dec(tt.wantPct)), "pct = %s", got.PercentageUsed)
			assert.True(t, got.MonthlyLimit.Equal(dec(tt.limit)))
			assert.True(t, got.TotalSpent.Equal(dec(tt.spent)))
		})
	}
}

func TestEvaluate_InvalidLimit(t *testing.T) {
	for _, limit := range []string{"0", "-1"} {
		_, err := Evaluate(dec(limit), dec("10"))
		assert.ErrorIs(t, err, core.ErrInvalidBudgetLimit, limit)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	first, err := Evaluate(dec("1500"), dec("1234.56"))
	require.NoError(t, err)
	second, err := Evaluate(dec("1500"), dec("1234.56"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, core.StatusWarning, first.Status)
}

func TestDisplayPercentage(t *testing.T) {
	snap, err := Evaluate(dec("1000"), dec("799.99"))
	require.NoError(t, err)
	assert.Equal(t, "79.99", snap.DisplayPercentage().StringFixed(2))
	assert.Equal(t, core.StatusHealthy, snap.Status)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, core.StatusHealthy, Classify(dec("79.9999")))
	assert.Equal(t, core.StatusWarning, Classify(dec("80")))
	assert.Equal(t, core.StatusOverBudget, Classify(dec("100")))
	assert.Equal(t, core.StatusOverBudget, Classify(dec("250")))
}

func TestClassify_FixedThresholds(t *testing.T) {
	assert.Equal(t, 80, WarningPercent)
	assert.Equal(t, 100, OverBudgetPercent)
	assert.Equal(t, core.StatusWarning, Classify(decimal.NewFromInt(WarningPercent)))
	assert.Equal(t, core.StatusOverBudget, Classify(decimal.NewFromInt(OverBudgetPercent)))
	assert.True(t, warningThreshold.Equal(dec("80")))
	assert.True(t, overBudgetThreshold.Equal(dec("100")))
}
