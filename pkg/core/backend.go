package core

import "context"

// Backend is the durable slot protocol: a textual key/value medium.
// Implementations must make a Set visible to every later Get on the same key.
type Backend interface {
	// Get returns the stored value for key. ok is false when the slot is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set replaces the whole value stored under key.
	Set(ctx context.Context, key, value string) error
}

// Initializer is implemented by backends that need setup before use
// (create directories, tables).
type Initializer interface {
	Initialize(ctx context.Context) error
}

// Watchable defines an interface for backends that can report slot changes
// made by other processes. pattern is a glob over keys ("*" for all).
type Watchable interface {
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
