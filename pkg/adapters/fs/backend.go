// Package fs implements core.Backend on the local filesystem.
//
// Each slot is one file named after its key ("slate.roles" is stored as
// "slate.roles.json" with the default extension). Writes go through a temp
// file and a rename.
package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/aretw0/slate/pkg/core"
)

// DefaultExt is the file extension used when Config.Ext is empty.
const DefaultExt = ".json"

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Config holds the configuration for the filesystem backend.
type Config struct {
	Path      string
	Ext       string // e.g. ".json" or ".yaml"
	MustExist bool
	Logger    *slog.Logger
	// ErrorHandler receives watcher failures that are otherwise only logged.
	ErrorHandler func(error)
}

// Backend stores slots as files in a directory.
type Backend struct {
	Path   string
	config Config

	mu            sync.RWMutex
	watcherActive bool
	lastWrite     *time.Time
}

// NewBackend creates a new filesystem-backed slot store.
func NewBackend(config Config) *Backend {
	if config.Ext == "" {
		config.Ext = DefaultExt
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Backend{
		Path:   config.Path,
		config: config,
	}
}

// Initialize creates the slot directory, or checks it exists when
// MustExist is set.
func (b *Backend) Initialize(ctx context.Context) error {
	if b.config.MustExist {
		info, err := os.Stat(b.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("storage path does not exist: %s", b.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("storage path is not a directory: %s", b.Path)
		}
		return nil
	}
	if err := os.MkdirAll(b.Path, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	return nil
}

// Get implements core.Backend.
func (b *Backend) Get(ctx context.Context, key string) (string, bool, error) {
	filename, err := b.filename(key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return string(data), true, nil
}

// Set implements core.Backend.
func (b *Backend) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	filename, err := b.filename(key)
	if err != nil {
		return err
	}
	if err := writeSlotFile(filename, []byte(value), 0644); err != nil {
		return err
	}

	now := time.Now()
	b.mu.Lock()
	b.lastWrite = &now
	b.mu.Unlock()

	b.config.Logger.Debug("slot file written", "key", key, "path", filename)
	return nil
}

// KeyFor maps a file name inside the slot directory back to its key.
// ok is false for files that are not slots.
func (b *Backend) KeyFor(name string) (string, bool) {
	base := filepath.Base(name)
	if filepath.Ext(base) != b.config.Ext {
		return "", false
	}
	key := base[:len(base)-len(b.config.Ext)]
	if !keyPattern.MatchString(key) {
		return "", false
	}
	return key, true
}

func (b *Backend) filename(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidKey, key)
	}
	return filepath.Join(b.Path, key+b.config.Ext), nil
}

var (
	_ core.Backend     = (*Backend)(nil)
	_ core.Initializer = (*Backend)(nil)
	_ core.Watchable   = (*Backend)(nil)
)
