package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/slate/pkg/core"
)

// Watch reports changes to slot files whose key matches pattern.
// The channel is closed when ctx is done or the watcher fails.
//
// Writes made through this backend are reported too; the backend does not
// know which process wrote a file.
func (b *Backend) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(b.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", b.Path, err)
	}

	events := make(chan core.Event, 16)
	b.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer b.setWatcherActive(false)
		defer watcher.Close()
		return b.watchLoop(ctx, watcher, pattern, events)
	}, lifecycle.WithErrorHandler(func(err error) {
		b.reportWatchError(fmt.Errorf("watcher panic: %w", err))
	}))

	return events, nil
}

func (b *Backend) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, pattern string, events chan<- core.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			e, ok := b.translate(event, pattern)
			if !ok {
				continue
			}
			select {
			case events <- e:
			case <-ctx.Done():
				return nil
			}

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			b.reportWatchError(wErr)
		}
	}
}

// translate maps a raw filesystem event to a slot event.
func (b *Backend) translate(event fsnotify.Event, pattern string) (core.Event, bool) {
	b.config.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	if strings.HasPrefix(filepath.Base(event.Name), TempFilePrefix) {
		return core.Event{}, false
	}
	key, ok := b.KeyFor(event.Name)
	if !ok {
		return core.Event{}, false
	}
	if match, err := doublestar.Match(pattern, key); err != nil || !match {
		return core.Event{}, false
	}

	var eType core.EventType
	switch {
	case event.Has(fsnotify.Create):
		eType = core.EventCreate
	case event.Has(fsnotify.Write):
		eType = core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		eType = core.EventDelete
	default:
		return core.Event{}, false
	}

	return core.Event{
		Type:      eType,
		Key:       key,
		Timestamp: time.Now().Unix(),
	}, true
}

func (b *Backend) reportWatchError(err error) {
	b.config.Logger.Error("fsnotify error", "error", err)
	if b.config.ErrorHandler != nil {
		b.config.ErrorHandler(err)
	}
}
