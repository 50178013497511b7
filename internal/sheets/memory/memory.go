// Package memory is an in-process spreadsheet mirror for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

var _ sheets.Mirror = (*Store)(nil)

type Store struct {
	mu    sync.Mutex
	rows  map[int64]sheets.Row
	order []int64
}

func New() *Store {
	return &Store{rows: map[int64]sheets.Row{}}
}

// Upsert stores the expense row and returns a synthetic row reference.
func (s *Store) Upsert(_ context.Context, e core.Expense) (string, error) {
	if e.ID <= 0 {
		return "", fmt.Errorf("expense without ID cannot be mirrored")
	}
	if err := e.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rows[e.ID]; !exists {
		s.order = append(s.order, e.ID)
	}
	s.rows[e.ID] = sheets.RowFromExpense(e)
	return fmt.Sprintf("mem:%d", e.ID), nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rows[id]; !exists {
		return nil
	}
	delete(s.rows, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Rows returns the mirrored rows in insertion order.
func (s *Store) Rows() []sheets.Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]sheets.Row, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.rows[id])
	}
	return out
}
