package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func newRecurringService(policy ReactivationPolicy) (*RecurringService, *MockRecurringStore, *MockCategoryStore) {
	store := new(MockRecurringStore)
	cats := new(MockCategoryStore)
	return NewRecurringService(store, cats, policy), store, cats
}

// echo makes SaveRecurring/CreateRecurring return their argument.
func echo(store *MockRecurringStore, method string) {
	store.On(method, mock.Anything, mock.Anything).Return(
		func(re core.RecurringExpense) core.RecurringExpense { return re }, nil,
	)
}

func TestParseReactivationPolicy(t *testing.T) {
	for in, want := range map[string]ReactivationPolicy{"": PolicyBacklog, "BACKLOG": PolicyBacklog, " skip ": PolicySkip} {
		got, err := ParseReactivationPolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseReactivationPolicy("replay")
	assert.Error(t, err)
}

func TestRecurringService_Create(t *testing.T) {
	ctx := context.Background()
	svc, store, cats := newRecurringService(PolicyBacklog)
	cats.On("GetCategory", ctx, int64(1)).Return(groceries, nil)
	echo(store, "CreateRecurring")

	got, err := svc.Create(ctx, core.RecurringExpense{
		Amount:     dec("9.99"),
		CategoryID: 1,
		Frequency:  "monthly",
		StartDate:  date(2025, 1, 31),
		Active:     false,
		LastFired:  date(2024, 1, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, core.Monthly, got.Frequency)
	assert.True(t, got.Active)
	assert.True(t, got.NextOccurrence.Equal(date(2025, 1, 31)))
	assert.True(t, got.LastFired.IsZero())
}

func TestRecurringService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, cats := newRecurringService(PolicyBacklog)
	cats.On("GetCategory", ctx, int64(1)).Return(groceries, nil)

	base := core.RecurringExpense{Amount: dec("5"), CategoryID: 1, Frequency: core.Weekly, StartDate: date(2025, 1, 10)}

	bad := base
	bad.Frequency = "HOURLY"
	_, err := svc.Create(ctx, bad)
	assert.ErrorIs(t, err, core.ErrInvalidFrequency)

	bad = base
	bad.EndDate = date(2025, 1, 9)
	_, err = svc.Create(ctx, bad)
	assert.ErrorIs(t, err, core.ErrEndBeforeStart)

	bad = base
	bad.Amount = dec("-1")
	_, err = svc.Create(ctx, bad)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestRecurringService_Update(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		existing core.RecurringExpense
		newStart core.Date
		newEnd   core.Date
		wantNext core.Date
	}{
		{
			name:     "never fired restarts from new start",
			existing: core.RecurringExpense{ID: 1, NextOccurrence: date(2025, 1, 1), Active: true},
			newStart: date(2025, 2, 15),
			wantNext: date(2025, 2, 15),
		},
		{
			name:     "fired series keeps its next occurrence",
			existing: core.RecurringExpense{ID: 1, NextOccurrence: date(2025, 3, 1), LastFired: date(2025, 2, 1), Active: true},
			newStart: date(2025, 1, 1),
			wantNext: date(2025, 3, 1),
		},
		{
			name:     "fired series is raised to a later start",
			existing: core.RecurringExpense{ID: 1, NextOccurrence: date(2025, 3, 1), LastFired: date(2025, 2, 1), Active: false},
			newStart: date(2025, 6, 1),
			wantNext: date(2025, 6, 1),
		},
		{
			name: "finished series resumes after a later end date",
			existing: core.RecurringExpense{
				ID: 1, EndDate: date(2025, 3, 1), NextOccurrence: date(2025, 3, 1), LastFired: date(2025, 3, 1), Active: true,
			},
			newStart: date(2025, 1, 1),
			newEnd:   date(2025, 12, 31),
			wantNext: date(2025, 4, 1),
		},
		{
			name: "paused finished series resumes too",
			existing: core.RecurringExpense{
				ID: 1, EndDate: date(2025, 3, 1), NextOccurrence: date(2025, 3, 1), LastFired: date(2025, 3, 1), Active: false,
			},
			newStart: date(2025, 1, 1),
			wantNext: date(2025, 4, 1),
		},
		{
			name: "finished series stays pinned within the same end date",
			existing: core.RecurringExpense{
				ID: 1, EndDate: date(2025, 3, 1), NextOccurrence: date(2025, 3, 1), LastFired: date(2025, 3, 1), Active: true,
			},
			newStart: date(2025, 1, 1),
			newEnd:   date(2025, 3, 20),
			wantNext: date(2025, 3, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, cats := newRecurringService(PolicyBacklog)
			cats.On("GetCategory", ctx, int64(1)).Return(groceries, nil)
			store.On("GetRecurring", ctx, int64(1)).Return(tt.existing, nil)
			echo(store, "SaveRecurring")

			got, err := svc.Update(ctx, core.RecurringExpense{
				ID:         1,
				Amount:     dec("20"),
				CategoryID: 1,
				Frequency:  core.Monthly,
				StartDate:  tt.newStart,
				EndDate:    tt.newEnd,
				Active:     !tt.existing.Active,
			})
			require.NoError(t, err)
			assert.True(t, got.NextOccurrence.Equal(tt.wantNext), "next = %s", got.NextOccurrence)
			assert.Equal(t, tt.existing.Active, got.Active, "update never toggles")
			assert.True(t, got.LastFired.Equal(tt.existing.LastFired))
		})
	}
}

func TestRecurringService_ToggleBacklogKeepsSchedule(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newRecurringService(PolicyBacklog)
	svc.now = func() time.Time { return time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC) }

	paused := core.RecurringExpense{ID: 4, Frequency: core.Weekly, StartDate: date(2025, 1, 1), NextOccurrence: date(2025, 3, 5)}
	store.On("GetRecurring", ctx, int64(4)).Return(paused, nil)
	echo(store, "SaveRecurring")

	got, err := svc.Toggle(ctx, 4, true)
	require.NoError(t, err)
	assert.True(t, got.Active)
	assert.True(t, got.NextOccurrence.Equal(date(2025, 3, 5)))
}

func TestRecurringService_ToggleSkipFastForwards(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newRecurringService(PolicySkip)
	svc.now = func() time.Time { return time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC) }

	paused := core.RecurringExpense{ID: 4, Frequency: core.Weekly, StartDate: date(2025, 1, 1), NextOccurrence: date(2025, 3, 5)}
	store.On("GetRecurring", ctx, int64(4)).Return(paused, nil)
	echo(store, "SaveRecurring")

	got, err := svc.Toggle(ctx, 4, true)
	require.NoError(t, err)
	assert.True(t, got.NextOccurrence.Equal(date(2025, 3, 26)), "next = %s", got.NextOccurrence)

	// Deactivating never moves the schedule.
	active := paused
	active.Active = true
	store.On("GetRecurring", ctx, int64(5)).Return(active, nil)
	got, err = svc.Toggle(ctx, 5, false)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.True(t, got.NextOccurrence.Equal(date(2025, 3, 5)))
}

func TestRecurringService_Preview(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newRecurringService(PolicyBacklog)
	store.On("GetRecurring", ctx, int64(1)).Return(core.RecurringExpense{
		ID: 1, Frequency: core.Monthly, NextOccurrence: date(2025, 1, 31), EndDate: date(2025, 4, 1),
	}, nil)

	dates, err := svc.Preview(ctx, 1, 10)
	require.NoError(t, err)
	var got []string
	for _, d := range dates {
		got = append(got, d.String())
	}
	assert.Equal(t, []string{"2025-01-31", "2025-02-28", "2025-03-28"}, got)

	_, err = svc.Preview(ctx, 1, 0)
	assert.Error(t, err)
}
