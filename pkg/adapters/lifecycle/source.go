// Package lifecycle exposes slot changes as a lifecycle.Source.
package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/slate/pkg/core"
	"github.com/aretw0/slate/pkg/store"
)

// Config describes which slot changes a SlotSource follows.
type Config struct {
	Watcher core.Watchable
	Pattern string       // watch pattern, "*" when empty
	Keys    []string     // only these keys are emitted; all when empty
	Store   *store.Store // when set, a key is invalidated before its event is emitted
	Logger  *slog.Logger
}

// SlotSource emits core.Event values for slots changed outside the process.
type SlotSource struct {
	cfg Config
	out chan lifecycle.Event

	mu      sync.Mutex
	started bool
}

// NewSource creates a SlotSource. Nothing is watched until Start.
func NewSource(cfg Config) *SlotSource {
	if cfg.Pattern == "" {
		cfg.Pattern = "*"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &SlotSource{
		cfg: cfg,
		out: make(chan lifecycle.Event, 16),
	}
}

// Events returns the output channel. It is closed when ctx passed to Start
// is done or the watcher stops.
func (s *SlotSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start subscribes to the watcher and forwards matching events. Errors
// from the subscription are returned; a source can be started once.
func (s *SlotSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("slot source already started")
	}

	upstream, err := s.cfg.Watcher.Watch(ctx, s.cfg.Pattern)
	if err != nil {
		return err
	}
	s.started = true

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-upstream:
				if !ok {
					return nil
				}
				if len(s.cfg.Keys) > 0 && !slices.Contains(s.cfg.Keys, e.Key) {
					continue
				}
				if s.cfg.Store != nil {
					s.cfg.Store.Invalidate(e.Key)
				}
				s.cfg.Logger.Debug("slot changed externally", "key", e.Key, "type", e.Type)
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}

var _ lifecycle.Source = (*SlotSource)(nil)
