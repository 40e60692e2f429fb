package slate

import (
	"context"
	"log/slog"

	"github.com/aretw0/slate/internal/config"
	"github.com/aretw0/slate/internal/platform"
	"github.com/aretw0/slate/pkg/codegen"
	"github.com/aretw0/slate/pkg/console"
	"github.com/aretw0/slate/pkg/core"
)

// --- Types ---

// Role is a public alias for core.Role.
type Role = core.Role

// User is a public alias for core.User.
type User = core.User

// Service is a public alias for the console service.
type Service = console.Service

// RoleInput is a public alias for console.RoleInput.
type RoleInput = console.RoleInput

// UserInput is a public alias for console.UserInput.
type UserInput = console.UserInput

// Config is a public alias for the file configuration.
type Config = config.Config

// --- Configuration ---

// Option defines a functional option for configuring slate.
type Option = platform.Option

// WithAdapter selects the storage adapter by name ("fs", "sqlite", "memory").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithBackend injects a custom slot backend.
func WithBackend(b core.Backend) Option {
	return platform.WithBackend(b)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithCodec selects the snapshot encoding ("json" or "yaml").
func WithCodec(name string) Option {
	return platform.WithCodec(name)
}

// WithRepairCorrupt overwrites undecodable slots with their defaults.
func WithRepairCorrupt(enabled bool) Option {
	return platform.WithRepairCorrupt(enabled)
}

// WithMustExist ensures the storage directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety controls the temp-directory sandbox under `go run`/`go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithKeys overrides the storage keys of the role and user collections.
func WithKeys(roles, users string) Option {
	return platform.WithKeys(roles, users)
}

// WithSeeds replaces the initial collections.
func WithSeeds(roles []Role, users []User) Option {
	return platform.WithSeeds(roles, users)
}

// WithWatcherErrorHandler registers a callback for watch loop errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Entry points ---

// New opens a console service over the storage at uri.
func New(ctx context.Context, uri string, opts ...Option) (*Service, error) {
	return platform.New(ctx, uri, opts...)
}

// LoadConfig reads a slate.toml file (missing is fine) and applies
// SLATE_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// NewFromConfig opens a console service as described by cfg. Extra options
// are applied after the config ones.
func NewFromConfig(ctx context.Context, cfg *Config, opts ...Option) (*Service, error) {
	return platform.New(ctx, cfg.Path, append(platform.FromConfig(cfg), opts...)...)
}

// DeriveUniqueCode returns the normalized form of name, suffixed with
// _1, _2, ... until it is not in taken. An empty normalization yields "".
func DeriveUniqueCode(name string, taken []string) string {
	set := make(map[string]struct{}, len(taken))
	for _, c := range taken {
		set[c] = struct{}{}
	}
	return codegen.DeriveUniqueCode(name, func(c string) bool {
		_, ok := set[c]
		return ok
	})
}
