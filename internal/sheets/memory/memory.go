package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"familybudget/internal/core"
	ports "familybudget/internal/sheets"
)

var (
	_ ports.HistoryWriter = (*Store)(nil)
	_ ports.HistoryReader = (*Store)(nil)
)

// Store keeps mirrored months in row order, like a sheet would.
type Store struct {
	mu   sync.Mutex
	rows []core.MonthSnapshot
}

func New() *Store {
	return &Store{}
}

func (s *Store) UpsertMonth(_ context.Context, snap core.MonthSnapshot) (string, error) {
	if snap.MonthKey == "" {
		return "", errors.New("month key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rows {
		if r.MonthKey == snap.MonthKey {
			s.rows[i] = snap
			return fmt.Sprintf("mem:%d", i+1), nil
		}
	}
	s.rows = append(s.rows, snap)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Store) ListMonths(_ context.Context) ([]core.MonthSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.MonthSnapshot(nil), s.rows...), nil
}
