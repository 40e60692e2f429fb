package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/slate/pkg/adapters/memory"
	"github.com/aretw0/slate/pkg/core"
	"github.com/aretw0/slate/pkg/store"
)

// chanWatcher replays a fixed channel as the watch stream.
type chanWatcher struct {
	events  chan core.Event
	pattern string
	err     error
}

func (w *chanWatcher) Watch(_ context.Context, pattern string) (<-chan core.Event, error) {
	w.pattern = pattern
	return w.events, w.err
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func next(t *testing.T, src *SlotSource) (core.Event, bool) {
	t.Helper()
	select {
	case e, ok := <-src.Events():
		if !ok {
			return core.Event{}, false
		}
		slotEvent, isSlot := e.(core.Event)
		require.True(t, isSlot, "unexpected event type %T", e)
		return slotEvent, true
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
		return core.Event{}, false
	}
}

func TestSource_FiltersInvalidatesAndCloses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend := memory.New()
	st := store.New(store.Config{Backend: backend, Logger: quiet()})
	_, err := store.Load(ctx, st, "slate.roles", []string{"A"})
	require.NoError(t, err)

	w := &chanWatcher{events: make(chan core.Event, 3)}
	w.events <- core.Event{Type: core.EventModify, Key: "noise-1"}
	w.events <- core.Event{Type: core.EventModify, Key: "slate.roles"}
	close(w.events)

	src := NewSource(Config{Watcher: w, Keys: []string{"slate.roles", "slate.users"}, Store: st, Logger: quiet()})
	require.NoError(t, src.Start(ctx))
	assert.Equal(t, "*", w.pattern)

	e, ok := next(t, src)
	require.True(t, ok)
	assert.Equal(t, "MODIFY slate.roles", fmt.Sprint(e))
	assert.NotContains(t, st.Keys(), "slate.roles", "snapshot must be dropped before the event is seen")

	_, ok = next(t, src)
	assert.False(t, ok, "output must close after upstream closes")
}

func TestSource_StartErrors(t *testing.T) {
	ctx := context.Background()

	failing := NewSource(Config{Watcher: &chanWatcher{err: errors.New("no watcher")}})
	assert.Error(t, failing.Start(ctx))

	src := NewSource(Config{Watcher: &chanWatcher{events: make(chan core.Event)}, Logger: quiet()})
	require.NoError(t, src.Start(ctx))
	assert.Error(t, src.Start(ctx), "second start")
}

func TestSource_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := NewSource(Config{Watcher: &chanWatcher{events: make(chan core.Event)}, Logger: quiet()})
	require.NoError(t, src.Start(ctx))

	cancel()
	_, ok := next(t, src)
	assert.False(t, ok)
}
