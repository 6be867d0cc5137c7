package backend

import (
	"context"

	"familybudget/internal/core"
	"familybudget/internal/storage"
)

// HistoryPublisher announces saved months. Nil when AMQP is not configured.
type HistoryPublisher interface {
	PublishMonthSaved(ctx context.Context, snap core.MonthSnapshot) error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds what the application needs to persist and mirror
// budget state, plus a cleanup function for the resources behind it.
type BackendResult struct {
	Store     storage.KeyValueStore
	Publisher HistoryPublisher
	// Ping reports whether the store is usable. Always non-nil.
	Ping    func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Optional history publisher
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
