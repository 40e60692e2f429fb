// Package memory implements core.Backend in process memory.
// It is the test fake for the store and the "memory" adapter of the CLI.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/slate/pkg/core"
)

// Backend keeps slot values in a map.
type Backend struct {
	mu     sync.RWMutex
	values map[string]string
	writes int
}

// New creates an empty backend.
func New() *Backend {
	return &Backend{values: make(map[string]string)}
}

// NewWithValues creates a backend pre-populated with raw slot text.
func NewWithValues(values map[string]string) *Backend {
	b := New()
	for k, v := range values {
		b.values[k] = v
	}
	return b
}

// Get implements core.Backend.
func (b *Backend) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[key]
	return v, ok, nil
}

// Set implements core.Backend.
func (b *Backend) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = value
	b.writes++
	return nil
}

// Raw returns the stored text for key, bypassing any store.
func (b *Backend) Raw(key string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[key]
	return v, ok
}

// Writes reports how many Set calls succeeded.
func (b *Backend) Writes() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.writes
}

// ComponentType implements introspection.Component.
func (b *Backend) ComponentType() string {
	return "memory"
}

var _ core.Backend = (*Backend)(nil)
