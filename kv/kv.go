package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("kv: key not found")

// ErrUnavailable wraps backend transport failures. Callers must treat it
// as an infrastructure fault, never as a domain outcome.
var ErrUnavailable = errors.New("kv: store unavailable")

// Store is the TTL key-value contract the engine is built on.
//
// Implementations must provide per-key atomicity for every method. A zero
// or negative ttl on Set is invalid.
type Store interface {
	// Set stores value under key with the given TTL, replacing any
	// previous value (last-writer-wins).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the current value, or ErrNotFound once the key has
	// expired or was never written.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// CompareAndDelete deletes the key only if it still holds exactly
	// expected. It reports whether the delete happened; false means the
	// key was absent, expired, or overwritten since expected was read.
	CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error)
}
