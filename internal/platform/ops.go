package platform

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/slate/pkg/adapters/fs"
	"github.com/aretw0/slate/pkg/adapters/memory"
	"github.com/aretw0/slate/pkg/adapters/sqlite"
	"github.com/aretw0/slate/pkg/core"
	"github.com/aretw0/slate/pkg/store"
)

// SQLiteFile is the database file name used when the sqlite uri is a
// directory rather than a .db/.sqlite/.sqlite3 file.
const SQLiteFile = "slate.db"

// Init prepares the slot backend selected by the options.
// The uri is adapter-specific: a directory for "fs", a database file or
// directory for "sqlite", ignored for "memory".
func Init(ctx context.Context, uri string, opts ...Option) (core.Backend, error) {
	return initBackend(ctx, uri, apply(opts))
}

// OpenStore prepares the backend and wraps it in a Store.
func OpenStore(ctx context.Context, uri string, opts ...Option) (*store.Store, error) {
	o := apply(opts)
	return openStore(ctx, uri, o)
}

func openStore(ctx context.Context, uri string, o *options) (*store.Store, error) {
	codec, err := store.CodecByName(o.codec)
	if err != nil {
		return nil, err
	}
	backend, err := initBackend(ctx, uri, o)
	if err != nil {
		return nil, err
	}
	return store.New(store.Config{
		Backend:       backend,
		Codec:         codec,
		Logger:        o.logger,
		RepairCorrupt: o.repair,
	}), nil
}

func initBackend(ctx context.Context, uri string, o *options) (core.Backend, error) {
	if o.backend != nil {
		return o.backend, nil
	}

	var (
		backend core.Backend
		err     error
	)
	switch o.adapter {
	case "fs", "":
		backend, err = initFS(uri, o)
	case "sqlite":
		// Open already creates the schema.
		return initSQLite(ctx, uri, o)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownAdapter, o.adapter)
	}
	if err != nil {
		return nil, err
	}

	if i, ok := backend.(core.Initializer); ok {
		if err := i.Initialize(ctx); err != nil {
			return nil, err
		}
	}
	return backend, nil
}

func resolve(uri string, o *options) string {
	useTemp := o.forceTemp || (o.devSafety && IsDevRun())
	path := ResolvePath(uri, useTemp)
	if o.logger != nil && useTemp && path != uri {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", uri, "resolved_path", path)
	}
	return path
}

func initFS(uri string, o *options) (core.Backend, error) {
	ext := fs.DefaultExt
	if o.codec == "yaml" {
		ext = ".yaml"
	}
	return fs.NewBackend(fs.Config{
		Path:         resolve(uri, o),
		Ext:          ext,
		MustExist:    o.mustExist,
		Logger:       o.logger,
		ErrorHandler: o.errorHandler,
	}), nil
}

func initSQLite(ctx context.Context, uri string, o *options) (core.Backend, error) {
	path := resolve(uri, o)
	if !isDatabaseFile(path) {
		path = filepath.Join(path, SQLiteFile)
	}
	return sqlite.Open(ctx, path, o.logger)
}

// isDatabaseFile reports whether a sqlite uri names the database file
// itself. Anything else (including dot-directories such as ".slate") is a
// directory that holds SQLiteFile.
func isDatabaseFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}
