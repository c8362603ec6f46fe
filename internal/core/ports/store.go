package ports

import (
	"context"
	"errors"
)

// Keys of the persisted session entries.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrCorruptState marks persisted state that exists but cannot be decoded.
// Callers treat it as absent state.
var ErrCorruptState = errors.New("persisted state is corrupt")

// KeyValueStore is durable key-value storage for client state.
// SetAll and Delete must apply all their keys together or not at all.
type KeyValueStore interface {
	// Get returns the value and whether the key exists. Unreadable stored
	// data is reported as ErrCorruptState.
	Get(ctx context.Context, key string) (string, bool, error)
	// SetAll and Delete replace corrupt stored data rather than fail on it.
	SetAll(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}
