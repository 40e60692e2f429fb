package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// BackendState exposes internal state for observability.
type BackendState struct {
	Path          string     `json:"path"`
	Ext           string     `json:"ext"`
	MustExist     bool       `json:"must_exist"`
	WatcherActive bool       `json:"watcher_active"`
	LastWrite     *time.Time `json:"last_write,omitempty"`
}

// State implements introspection.Introspectable.
func (b *Backend) State() any {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return BackendState{
		Path:          b.Path,
		Ext:           b.config.Ext,
		MustExist:     b.config.MustExist,
		WatcherActive: b.watcherActive,
		LastWrite:     b.lastWrite,
	}
}

// ComponentType implements introspection.Component.
func (b *Backend) ComponentType() string {
	return "fs"
}

var _ introspection.Introspectable = (*Backend)(nil)
var _ introspection.Component = (*Backend)(nil)

func (b *Backend) setWatcherActive(active bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.watcherActive = active
}
