// Package typed provides type-safe views over store slots.
//
// Slot[T] binds a key and its default to a Store. Collection[R] is a slot
// holding a code-keyed snapshot of records and owns the creation flow:
// the code of a new record is derived from its display name against the
// snapshot current at the time of the write.
package typed

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/slate/pkg/codegen"
	"github.com/aretw0/slate/pkg/core"
	"github.com/aretw0/slate/pkg/store"
)

// Slot is a typed handle on one durable slot.
type Slot[T any] struct {
	store   *store.Store
	key     string
	initial T
}

// NewSlot creates a handle on key; initial is served when the slot is
// absent or cannot be decoded.
func NewSlot[T any](s *store.Store, key string, initial T) *Slot[T] {
	return &Slot[T]{store: s, key: key, initial: initial}
}

// Key returns the storage key of the slot.
func (sl *Slot[T]) Key() string {
	return sl.key
}

// Load returns the current snapshot.
func (sl *Slot[T]) Load(ctx context.Context) (T, error) {
	return store.Load(ctx, sl.store, sl.key, sl.initial)
}

// Update replaces the snapshot and writes it through.
func (sl *Slot[T]) Update(ctx context.Context, value T) error {
	return store.Update(ctx, sl.store, sl.key, value)
}

// Collection is a slot holding an ordered, code-keyed list of records.
// Writes through one Collection are serialized; separate processes are not
// coordinated and the last writer wins.
type Collection[R core.Record] struct {
	slot *Slot[[]R]
	mu   sync.Mutex // read-modify-write of the snapshot
}

// NewCollection creates a collection stored under key, seeded with seed.
func NewCollection[R core.Record](s *store.Store, key string, seed []R) *Collection[R] {
	return &Collection[R]{slot: NewSlot(s, key, seed)}
}

// Key returns the storage key of the collection.
func (c *Collection[R]) Key() string {
	return c.slot.Key()
}

// List returns a copy of the current snapshot.
func (c *Collection[R]) List(ctx context.Context) ([]R, error) {
	snapshot, err := c.slot.Load(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(snapshot), nil
}

// Get returns the record with the given code.
func (c *Collection[R]) Get(ctx context.Context, code string) (R, error) {
	var zero R
	snapshot, err := c.slot.Load(ctx)
	if err != nil {
		return zero, err
	}
	for _, rec := range snapshot {
		if rec.Key() == code {
			return rec, nil
		}
	}
	return zero, fmt.Errorf("%w: %s", core.ErrNotFound, code)
}

// Has reports whether a record with code exists.
func (c *Collection[R]) Has(ctx context.Context, code string) (bool, error) {
	_, err := c.Get(ctx, code)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// DeriveCode previews the code a record named name would receive now.
// It never writes; the result is advisory.
func (c *Collection[R]) DeriveCode(ctx context.Context, name string) (string, error) {
	snapshot, err := c.slot.Load(ctx)
	if err != nil {
		return "", err
	}
	return codegen.Derive(name, snapshot), nil
}

// ErrUnchanged may be returned by an Update callback to leave the record
// as it is without writing.
var ErrUnchanged = errors.New("record unchanged")

// Create derives the code for name against the current snapshot, builds the
// record with it and appends it. The derivation here is authoritative:
// whatever a preview returned earlier is ignored.
func (c *Collection[R]) Create(ctx context.Context, name string, build func(code string) R) (R, error) {
	return c.CreateChecked(ctx, name, nil, build)
}

// CreateChecked is Create with a precondition. check sees the snapshot the
// record will be appended to, under the same lock as the write; a non-nil
// error aborts the creation and is returned as is.
func (c *Collection[R]) CreateChecked(ctx context.Context, name string, check func(snapshot []R) error, build func(code string) R) (R, error) {
	var zero R
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot, err := c.slot.Load(ctx)
	if err != nil {
		return zero, err
	}
	if check != nil {
		if err := check(slices.Clone(snapshot)); err != nil {
			return zero, err
		}
	}

	code := codegen.Derive(name, snapshot)
	if code == "" {
		return zero, core.ErrEmptyCode
	}

	rec := build(code)
	if rec.Key() != code {
		return zero, fmt.Errorf("built record has code %q, derived %q", rec.Key(), code)
	}

	next := append(slices.Clone(snapshot), rec)
	if err := c.slot.Update(ctx, next); err != nil {
		return zero, err
	}
	return rec, nil
}

// Update applies fn to the record with the given code and writes the
// result, all under the collection lock. fn may return ErrUnchanged to skip
// the write; the current record is then returned. The code must not change.
func (c *Collection[R]) Update(ctx context.Context, code string, fn func(rec R) (R, error)) (R, error) {
	var zero R
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot, err := c.slot.Load(ctx)
	if err != nil {
		return zero, err
	}
	idx := slices.IndexFunc(snapshot, func(r R) bool { return r.Key() == code })
	if idx < 0 {
		return zero, fmt.Errorf("%w: %s", core.ErrNotFound, code)
	}

	rec, err := fn(snapshot[idx])
	if errors.Is(err, ErrUnchanged) {
		return snapshot[idx], nil
	}
	if err != nil {
		return zero, err
	}
	if rec.Key() != code {
		return zero, fmt.Errorf("updated record has code %q, want %q", rec.Key(), code)
	}

	next := slices.Clone(snapshot)
	next[idx] = rec
	if err := c.slot.Update(ctx, next); err != nil {
		return zero, err
	}
	return rec, nil
}

// Put replaces the existing record that has the same code.
func (c *Collection[R]) Put(ctx context.Context, rec R) error {
	_, err := c.Update(ctx, rec.Key(), func(R) (R, error) { return rec, nil })
	return err
}

// Replace writes a whole new snapshot. Codes must be non-empty and unique.
func (c *Collection[R]) Replace(ctx context.Context, snapshot []R) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]struct{}, len(snapshot))
	for _, rec := range snapshot {
		if rec.Key() == "" {
			return core.ErrEmptyCode
		}
		if _, dup := seen[rec.Key()]; dup {
			return fmt.Errorf("%w: %s", core.ErrDuplicateCode, rec.Key())
		}
		seen[rec.Key()] = struct{}{}
	}
	return c.slot.Update(ctx, slices.Clone(snapshot))
}
