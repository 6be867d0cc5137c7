// Package storage persists the budget state as independent key/value
// entries, one per field, mirroring a browser local store.
package storage

import "context"

// KeyValueStore is a durable, synchronous string store.
type KeyValueStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set creates or replaces the value stored under key.
	Set(ctx context.Context, key, value string) error
	Close() error
}
