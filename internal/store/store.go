// Package store provides the client-side state stores backing identity
// persistence. It mirrors the browser's storage split: one durable store that
// survives restarts and one scoped to a single run.
package store

import (
	"context"
)

// Well-known keys. The identity layer owns both values; nothing else is
// persisted client-side.
const (
	KeyUserID    = "userId"
	KeySessionID = "sessionId"
)

// Store is a small keyed-value store for opaque widget state.
type Store interface {
	// Get retrieves the value for a key. Returns "" with a nil error when
	// the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Put creates or overwrites the value for a key.
	Put(ctx context.Context, key, value string) error

	// Close releases the underlying resources.
	Close() error
}
