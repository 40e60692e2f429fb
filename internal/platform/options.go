package platform

import (
	"log/slog"

	"github.com/aretw0/slate/internal/config"
	"github.com/aretw0/slate/pkg/core"
)

// options holds the internal configuration for a slate console.
type options struct {
	backend      core.Backend
	logger       *slog.Logger
	adapter      string
	codec        string
	repair       bool
	mustExist    bool
	forceTemp    bool
	devSafety    bool
	rolesKey     string
	usersKey     string
	seedRoles    []core.Role
	seedUsers    []core.User
	errorHandler func(error)
}

// Option defines a functional option for configuring slate.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:   "fs",
		codec:     "json",
		devSafety: true,
	}
}

func apply(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithBackend injects a custom slot backend (e.g. a fake in tests).
// If provided, the adapter selection is skipped.
func WithBackend(b core.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithAdapter selects the storage adapter by name: "fs", "sqlite" or
// "memory". Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithLogger sets the logger for the store and the console.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCodec selects the snapshot encoding by name ("json" or "yaml").
func WithCodec(name string) Option {
	return func(o *options) {
		o.codec = name
	}
}

// WithRepairCorrupt makes a load overwrite an undecodable slot with its
// default instead of leaving it untouched.
func WithRepairCorrupt(enabled bool) Option {
	return func(o *options) {
		o.repair = enabled
	}
}

// WithMustExist ensures the storage directory must already exist (fs only).
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithForceTemp forces the storage path into a temporary directory.
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or
// `go test`. Enabled by default: paths outside the system temp directory
// are re-rooted under it.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}

// WithKeys overrides the storage keys of the role and user collections.
// Empty values keep the defaults.
func WithKeys(roles, users string) Option {
	return func(o *options) {
		o.rolesKey = roles
		o.usersKey = users
	}
}

// WithSeeds replaces the initial collections served for absent slots.
func WithSeeds(roles []core.Role, users []core.User) Option {
	return func(o *options) {
		o.seedRoles = roles
		o.seedUsers = users
	}
}

// WithWatcherErrorHandler registers a callback for errors raised inside the
// watch loop, which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// FromConfig translates a loaded config file into options. The storage
// path is not an option; callers pass cfg.Path as the uri.
func FromConfig(cfg *config.Config) []Option {
	return []Option{
		WithAdapter(cfg.Adapter),
		WithCodec(cfg.Codec),
		WithRepairCorrupt(cfg.RepairCorrupt),
		WithKeys(cfg.Keys.Roles, cfg.Keys.Users),
	}
}
