package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/schedule"
)

// ReactivationPolicy decides what happens to the occurrences a paused
// series missed when it is switched back on.
type ReactivationPolicy string

const (
	// PolicyBacklog keeps NextOccurrence, so missed occurrences fire one per tick.
	PolicyBacklog ReactivationPolicy = "backlog"
	// PolicySkip fast-forwards the series to today.
	PolicySkip ReactivationPolicy = "skip"
)

const MaxPreviewCount = 100

func ParseReactivationPolicy(s string) (ReactivationPolicy, error) {
	switch p := ReactivationPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PolicyBacklog:
		return PolicyBacklog, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("unknown reactivation policy %q", s)
	}
}

type RecurringService struct {
	store      RecurringStore
	categories CategoryStore
	policy     ReactivationPolicy
	now        func() time.Time
}

func NewRecurringService(store RecurringStore, categories CategoryStore, policy ReactivationPolicy) *RecurringService {
	return &RecurringService{
		store:      store,
		categories: categories,
		policy:     policy,
		now:        time.Now,
	}
}

// Create registers a new series. It starts active with its first occurrence
// on the start date.
func (s *RecurringService) Create(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error) {
	re, err := s.normalize(ctx, re)
	if err != nil {
		return core.RecurringExpense{}, err
	}
	re.ID = 0
	re.NextOccurrence = re.StartDate
	re.Active = true
	re.LastFired = core.Date{}

	created, err := s.store.CreateRecurring(ctx, re)
	if err != nil {
		return core.RecurringExpense{}, fmt.Errorf("save recurring expense: %w", err)
	}
	return created, nil
}

func (s *RecurringService) Get(ctx context.Context, id int64) (core.RecurringExpense, error) {
	return s.store.GetRecurring(ctx, id)
}

func (s *RecurringService) List(ctx context.Context, activeOnly bool) ([]core.RecurringExpense, error) {
	return s.store.ListRecurring(ctx, activeOnly)
}

// Update replaces the editable fields of a series. A series that never fired
// restarts from its (possibly new) start date. One that already fired keeps
// its next occurrence so past firings are not replayed, raised to the start
// date when that moved forward. A finished series resumes one period after
// its last occurrence when the edited bounds allow it.
func (s *RecurringService) Update(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error) {
	existing, err := s.store.GetRecurring(ctx, re.ID)
	if err != nil {
		return core.RecurringExpense{}, err
	}
	re, err = s.normalize(ctx, re)
	if err != nil {
		return core.RecurringExpense{}, err
	}

	re.Active = existing.Active
	re.LastFired = existing.LastFired
	if existing.HasFired() {
		re.NextOccurrence = existing.NextOccurrence
		if !existing.LastFired.Before(existing.NextOccurrence) {
			// Pinned on its last occurrence. A later end date or another
			// frequency may let it step on again.
			step := re
			step.Active = true
			if advanced, ok := schedule.Advance(step); ok {
				re.NextOccurrence = advanced.NextOccurrence
			}
		}
		if re.NextOccurrence.Before(re.StartDate) {
			re.NextOccurrence = re.StartDate
		}
	} else {
		re.NextOccurrence = re.StartDate
	}

	updated, err := s.store.SaveRecurring(ctx, re)
	if err != nil {
		return core.RecurringExpense{}, fmt.Errorf("update recurring expense: %w", err)
	}
	return updated, nil
}

func (s *RecurringService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteRecurring(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Recurring expense deleted", "id", id)
	return nil
}

// Toggle sets the activation flag. Under PolicySkip a reactivated series
// resumes from today instead of replaying what it missed.
func (s *RecurringService) Toggle(ctx context.Context, id int64, active bool) (core.RecurringExpense, error) {
	existing, err := s.store.GetRecurring(ctx, id)
	if err != nil {
		return core.RecurringExpense{}, err
	}

	toggled := schedule.ToggleActive(existing, active)
	if active && !existing.Active && s.policy == PolicySkip {
		toggled = schedule.FastForward(toggled, core.DateOf(s.now()))
	}

	saved, err := s.store.SaveRecurring(ctx, toggled)
	if err != nil {
		return core.RecurringExpense{}, fmt.Errorf("toggle recurring expense: %w", err)
	}
	slog.InfoContext(ctx, "Recurring expense toggled",
		"id", id,
		"active", active,
		"next_occurrence", saved.NextOccurrence.String())
	return saved, nil
}

// Preview lists the next count occurrence dates of a series.
func (s *RecurringService) Preview(ctx context.Context, id int64, count int) ([]core.Date, error) {
	if count < 1 || count > MaxPreviewCount {
		return nil, fmt.Errorf("preview count must be between 1 and %d", MaxPreviewCount)
	}
	re, err := s.store.GetRecurring(ctx, id)
	if err != nil {
		return nil, err
	}
	return schedule.Occurrences(re, count), nil
}

func (s *RecurringService) normalize(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error) {
	freq, err := core.ParseFrequency(string(re.Frequency))
	if err != nil {
		return core.RecurringExpense{}, err
	}
	re.Frequency = freq

	cat, err := resolveCategory(ctx, s.categories, re.CategoryID, re.Category)
	if err != nil {
		return core.RecurringExpense{}, err
	}
	re.CategoryID = cat.ID
	re.Category = cat.Name
	re.Amount = core.RoundAmount(re.Amount)
	re.Description = strings.TrimSpace(re.Description)

	if err := re.Validate(); err != nil {
		return core.RecurringExpense{}, err
	}
	return re, nil
}
