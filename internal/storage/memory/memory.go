package memory

import (
	"context"
	"sync"
)

// Store keeps entries in a map. Nothing survives the process.
type Store struct {
	mu      sync.Mutex
	entries map[string]string
	writes  int
}

func New() *Store {
	return &Store{entries: make(map[string]string)}
}

// NewSeeded returns a store pre-populated with entries, handy for tests
// that start from previously persisted state.
func NewSeeded(entries map[string]string) *Store {
	s := New()
	for k, v := range entries {
		s.entries[k] = v
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	s.writes++
	return nil
}

func (s *Store) Close() error { return nil }

// Writes returns how many Set calls were made.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Snapshot returns a copy of every entry.
func (s *Store) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}
