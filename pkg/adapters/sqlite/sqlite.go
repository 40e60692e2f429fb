// Package sqlite implements core.Backend on an embedded SQLite database.
// All slots live in a single table; each Set replaces one row.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/aretw0/slate/pkg/core"
)

const (
	querySchema = `CREATE TABLE IF NOT EXISTS slots (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`
	queryGet = `SELECT value FROM slots WHERE key = ?`
	querySet = `INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	queryCount = `SELECT COUNT(*) FROM slots`
)

// Backend stores slots as rows of the slots table.
type Backend struct {
	db     *sql.DB
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	writes int
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Backend, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	b := NewWithDB(db, logger)
	b.path = path
	if err := b.Initialize(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

// NewWithDB wraps an existing connection. The schema is not created;
// call Initialize when needed.
func NewWithDB(db *sql.DB, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{db: db, logger: logger}
}

// Initialize creates the slots table if it does not exist.
func (b *Backend) Initialize(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, querySchema); err != nil {
		return fmt.Errorf("create slots table: %w", err)
	}
	return nil
}

// Get implements core.Backend.
func (b *Backend) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	var value string
	err := b.db.QueryRowContext(ctx, queryGet, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query slot %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements core.Backend.
func (b *Backend) Set(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if _, err := b.db.ExecContext(ctx, querySet, key, value, time.Now().Unix()); err != nil {
		return fmt.Errorf("write slot %s: %w", key, err)
	}

	b.mu.Lock()
	b.writes++
	b.mu.Unlock()

	b.logger.Debug("slot row written", "key", key, "bytes", len(value))
	return nil
}

// Close closes the underlying database connection.
func (b *Backend) Close() error {
	return b.db.Close()
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: key is empty", core.ErrInvalidKey)
	}
	return nil
}

// BackendState exposes internal state for observability.
type BackendState struct {
	Path   string `json:"path"`
	Slots  int    `json:"slots"`
	Writes int    `json:"writes"`
}

// State implements introspection.Introspectable.
func (b *Backend) State() any {
	var count int
	if err := b.db.QueryRow(queryCount).Scan(&count); err != nil {
		count = -1
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return BackendState{Path: b.path, Slots: count, Writes: b.writes}
}

// ComponentType implements introspection.Component.
func (b *Backend) ComponentType() string {
	return "sqlite"
}

var (
	_ core.Backend                 = (*Backend)(nil)
	_ core.Initializer             = (*Backend)(nil)
	_ introspection.Introspectable = (*Backend)(nil)
	_ introspection.Component      = (*Backend)(nil)
)
