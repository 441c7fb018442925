package store

import (
	"context"
	"errors"
)

// ErrUnknownBackend is returned by Open for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown session store backend")

// Store is the durable key-value mirror of the client session. Every call
// completes its write before returning.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// SetAll writes every pair in one step.
	SetAll(ctx context.Context, values map[string]string) error

	// Delete removes keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Lifecycle
	Close() error
}
