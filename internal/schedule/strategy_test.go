package schedule

import (
	"testing"

	"fintrack/internal/core"
)

func TestStepper_Step(t *testing.T) {
	tests := []struct {
		name      string
		frequency core.Frequency
		from      core.Date
		want      core.Date
	}{
		{"daily", core.Daily, core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 2)},
		{"daily crosses year", core.Daily, core.NewDate(2024, 12, 31), core.NewDate(2025, 1, 1)},
		{"weekly", core.Weekly, core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 8)},
		{"biweekly", core.Biweekly, core.NewDate(2025, 2, 20), core.NewDate(2025, 3, 6)},
		{"monthly", core.Monthly, core.NewDate(2025, 3, 15), core.NewDate(2025, 4, 15)},
		{"monthly clamps to leap day", core.Monthly, core.NewDate(2024, 1, 31), core.NewDate(2024, 2, 29)},
		{"monthly clamps to feb 28", core.Monthly, core.NewDate(2025, 1, 31), core.NewDate(2025, 2, 28)},
		{"monthly clamps to 30th", core.Monthly, core.NewDate(2025, 3, 31), core.NewDate(2025, 4, 30)},
		{"monthly crosses year", core.Monthly, core.NewDate(2025, 12, 31), core.NewDate(2026, 1, 31)},
		{"quarterly", core.Quarterly, core.NewDate(2025, 1, 15), core.NewDate(2025, 4, 15)},
		{"quarterly clamps", core.Quarterly, core.NewDate(2025, 11, 30), core.NewDate(2026, 2, 28)},
		{"yearly", core.Yearly, core.NewDate(2025, 6, 1), core.NewDate(2026, 6, 1)},
		{"yearly from leap day", core.Yearly, core.NewDate(2024, 2, 29), core.NewDate(2025, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stepper, err := GetStepper(tt.frequency)
			if err != nil {
				t.Fatalf("GetStepper(%s) error = %v", tt.frequency, err)
			}
			got := stepper.Step(tt.from)
			if !got.Equal(tt.want) {
				t.Errorf("Step(%s) = %s, want %s", tt.from, got, tt.want)
			}
		})
	}
}

func TestGetStepper_Unknown(t *testing.T) {
	if _, err := GetStepper("FORTNIGHTLY"); err == nil {
		t.Fatal("GetStepper should fail for an unknown frequency")
	}
}

func TestGetStepper_AllFrequencies(t *testing.T) {
	for _, f := range core.Frequencies() {
		if _, err := GetStepper(f); err != nil {
			t.Errorf("no stepper registered for %s: %v", f, err)
		}
	}
}
