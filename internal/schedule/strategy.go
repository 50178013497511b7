// Package schedule computes the occurrence dates of recurring expenses.
//
// Each frequency has its own stepping strategy. Day-based frequencies add a
// fixed number of days; month-based ones add calendar months and clamp the
// day to the end of the target month, so a series anchored on the 31st
// lands on the 28th, 29th or 30th in shorter months.
package schedule

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

// Stepper is the strategy interface for advancing a date by one period.
type Stepper interface {
	// Step returns the occurrence date one period after from.
	Step(from core.Date) core.Date
}

// DayStepper advances by a fixed number of days.
type DayStepper struct {
	Days int
}

func (s DayStepper) Step(from core.Date) core.Date {
	return from.AddDays(s.Days)
}

// MonthStepper advances by calendar months, clamping to the last day of the
// target month.
type MonthStepper struct {
	Months int
}

func (s MonthStepper) Step(from core.Date) core.Date {
	return core.Date{Time: addMonthsClamped(from.Time, s.Months)}
}

// steppers maps every frequency to its strategy.
var steppers = map[core.Frequency]Stepper{
	core.Daily:     DayStepper{Days: 1},
	core.Weekly:    DayStepper{Days: 7},
	core.Biweekly:  DayStepper{Days: 14},
	core.Monthly:   MonthStepper{Months: 1},
	core.Quarterly: MonthStepper{Months: 3},
	core.Yearly:    MonthStepper{Months: 12},
}

// GetStepper returns the stepping strategy for a frequency.
func GetStepper(frequency core.Frequency) (Stepper, error) {
	stepper, ok := steppers[frequency]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidFrequency, string(frequency))
	}
	return stepper, nil
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := daysIn(target.Year(), target.Month(), t.Location())
	if d > lastDay {
		d = lastDay
	}
	return time.Date(target.Year(), target.Month(), d, 0, 0, 0, 0, t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
