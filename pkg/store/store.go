// Package store keeps typed snapshots in durable key/value slots.
//
// A Store resolves each key once: the first Load reads the slot from the
// backend, seeds it with the caller's default when it is absent, and serves
// the default (without failing) when the stored text cannot be decoded.
// Every Update replaces the in-memory snapshot and writes the whole encoded
// snapshot through to the backend before returning.
//
// There is no coordination between processes sharing a backend: the last
// writer wins.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/slate/pkg/core"
)

// Config holds the configuration for a Store.
type Config struct {
	Backend core.Backend
	Codec   Codec // Defaults to JSONCodec.
	Logger  *slog.Logger
	// RepairCorrupt overwrites an undecodable slot with the default served in
	// its place. Off by default: the corrupt text is left untouched.
	RepairCorrupt bool
}

// Store owns the in-memory snapshots of the slots it has loaded.
type Store struct {
	backend core.Backend
	codec   Codec
	logger  *slog.Logger
	repair  bool

	mu    sync.Mutex
	slots map[string]any
}

// New creates a Store over the given backend.
func New(cfg Config) *Store {
	codec := cfg.Codec
	if codec == nil {
		codec = JSONCodec{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend: cfg.Backend,
		codec:   codec,
		logger:  logger,
		repair:  cfg.RepairCorrupt,
		slots:   make(map[string]any),
	}
}

// Backend returns the backend the store writes through to.
func (s *Store) Backend() core.Backend {
	return s.backend
}

// Load returns the snapshot held under key.
//
// The first call for a key reads the backend:
//   - absent (or empty) slot: initial is written through and returned.
//   - undecodable slot: the failure is logged and initial is returned.
//   - otherwise the decoded value is returned.
//
// Later calls return the in-memory snapshot until Invalidate is called.
// Only backend I/O failures are reported as errors.
func Load[T any](ctx context.Context, s *Store, key string, initial T) (T, error) {
	if err := validateKey(key); err != nil {
		return initial, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.slots[key]; ok {
		value, ok := cached.(T)
		if !ok {
			return initial, fmt.Errorf("%w: %s holds %T", core.ErrTypeMismatch, key, cached)
		}
		return value, nil
	}

	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return initial, fmt.Errorf("failed to read slot %s: %w", key, err)
	}

	if !ok || raw == "" {
		if err := s.write(ctx, key, initial); err != nil {
			return initial, err
		}
		s.slots[key] = initial
		return initial, nil
	}

	var value T
	if err := s.codec.Unmarshal([]byte(raw), &value); err != nil {
		s.logger.Error("failed to parse slot, serving default", "key", key, "error", err)
		if s.repair {
			if werr := s.write(ctx, key, initial); werr != nil {
				s.logger.Warn("failed to repair slot", "key", key, "error", werr)
			}
		}
		s.slots[key] = initial
		return initial, nil
	}

	s.slots[key] = value
	return value, nil
}

// Update replaces the snapshot under key and writes it through.
// When the write fails the in-memory snapshot is left unchanged.
func Update[T any](ctx context.Context, s *Store, key string, value T) error {
	if err := validateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.slots[key]; ok {
		if _, ok := cached.(T); !ok {
			return fmt.Errorf("%w: %s holds %T", core.ErrTypeMismatch, key, cached)
		}
	}

	if err := s.write(ctx, key, value); err != nil {
		return err
	}
	s.slots[key] = value
	return nil
}

// Invalidate drops the in-memory snapshot for key so the next Load re-reads
// the backend. Used when another process is known to have written the slot.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, key)
}

// Keys returns the keys currently held in memory, sorted.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.slots))
	for k := range s.slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// write encodes value and stores it. Caller must hold s.mu.
func (s *Store) write(ctx context.Context, key string, value any) error {
	data, err := s.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode slot %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	s.logger.Debug("slot written", "key", key, "bytes", len(data), "codec", s.codec.Name())
	return nil
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: key is empty", core.ErrInvalidKey)
	}
	return nil
}
