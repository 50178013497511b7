package schedule

import (
	"log/slog"

	"fintrack/internal/core"
)

// NextOccurrence returns the date one period after current.
func NextOccurrence(current core.Date, frequency core.Frequency) (core.Date, error) {
	stepper, err := GetStepper(frequency)
	if err != nil {
		return core.Date{}, err
	}
	return stepper.Step(current), nil
}

// IsSeriesExhausted reports whether def must not advance any further from
// ref: the definition is inactive, or the next date after ref would fall
// past its end date. A zero ref means def.NextOccurrence.
//
// An unknown frequency has no next date and counts as exhausted. Frequencies
// are validated on create and update, so only a corrupted row gets there; it
// is logged so it does not stall silently.
func IsSeriesExhausted(def core.RecurringExpense, ref core.Date) bool {
	if !def.Active {
		return true
	}
	if ref.IsZero() {
		ref = def.NextOccurrence
	}
	next, err := NextOccurrence(ref, def.Frequency)
	if err != nil {
		slog.Warn("Recurring expense has no next occurrence",
			"recurring_id", def.ID,
			"frequency", string(def.Frequency),
			"error", err)
		return true
	}
	return def.HasEndDate() && next.After(def.EndDate)
}

// Advance moves def forward by one period. When the series is exhausted the
// definition comes back unchanged, pinned at its last valid occurrence, and
// the boolean is false.
func Advance(def core.RecurringExpense) (core.RecurringExpense, bool) {
	if IsSeriesExhausted(def, def.NextOccurrence) {
		return def, false
	}
	next, err := NextOccurrence(def.NextOccurrence, def.Frequency)
	if err != nil {
		return def, false
	}
	def.NextOccurrence = next
	return def, true
}

// ToggleActive sets the activation flag and nothing else.
func ToggleActive(def core.RecurringExpense, active bool) core.RecurringExpense {
	def.Active = active
	return def
}

// IsDue reports whether the occurrence at def.NextOccurrence should be
// materialized on today: the definition is active, the date has been
// reached, it lies within the series bounds and it was not fired before.
func IsDue(def core.RecurringExpense, today core.Date) bool {
	if !def.Active || def.NextOccurrence.IsZero() {
		return false
	}
	if def.NextOccurrence.After(today) {
		return false
	}
	if def.HasEndDate() && def.NextOccurrence.After(def.EndDate) {
		return false
	}
	return def.LastFired.IsZero() || def.LastFired.Before(def.NextOccurrence)
}

// FastForward advances def until its next occurrence is on or after today,
// skipping the occurrences in between. It stops early on exhaustion.
func FastForward(def core.RecurringExpense, today core.Date) core.RecurringExpense {
	for def.NextOccurrence.Before(today) {
		advanced, ok := Advance(def)
		if !ok {
			break
		}
		def = advanced
	}
	return def
}

// Occurrences lists up to limit occurrence dates starting at
// def.NextOccurrence, honoring the end date. Activation is ignored so a
// paused series can still be previewed.
func Occurrences(def core.RecurringExpense, limit int) []core.Date {
	if limit <= 0 || def.NextOccurrence.IsZero() {
		return nil
	}
	if def.HasEndDate() && def.NextOccurrence.After(def.EndDate) {
		return nil
	}
	def.Active = true
	out := []core.Date{def.NextOccurrence}
	for len(out) < limit {
		advanced, ok := Advance(def)
		if !ok {
			break
		}
		def = advanced
		out = append(out, def.NextOccurrence)
	}
	return out
}
