// Package kv provides the local key-value stores that hold persisted state.
package kv

import (
	"context"
	"fmt"
)

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Store is a minimal string-keyed blob store.
type Store interface {
	// Get returns the value under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set replaces the value under key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open returns the Store for driver. path is only used by sqlite.
func Open(ctx context.Context, driver, path string) (Store, error) {
	switch driver {
	case DriverSQLite:
		return OpenSQLite(ctx, path)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
