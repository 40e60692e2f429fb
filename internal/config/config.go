// Package config loads slate settings from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// FileName is the config file looked up in the workspace root.
const FileName = "slate.toml"

// Config is the on-disk configuration.
type Config struct {
	Adapter       string `toml:"adapter"`        // SLATE_ADAPTER (default "fs")
	Path          string `toml:"path"`           // SLATE_PATH (default ".slate")
	Codec         string `toml:"codec"`          // SLATE_CODEC (default "json")
	RepairCorrupt bool   `toml:"repair_corrupt"` // SLATE_REPAIR_CORRUPT
	Keys          Keys   `toml:"keys"`
}

// Keys overrides the storage keys of the collections.
type Keys struct {
	Roles string `toml:"roles"`
	Users string `toml:"users"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Adapter: "fs",
		Path:    ".slate",
		Codec:   "json",
	}
}

// Load reads the file at path (if any) over the defaults and then applies
// environment overrides. An empty path skips the file. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, c); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	c.Adapter = envOrDefault("SLATE_ADAPTER", c.Adapter)
	c.Path = envOrDefault("SLATE_PATH", c.Path)
	c.Codec = envOrDefault("SLATE_CODEC", c.Codec)
	if v := os.Getenv("SLATE_REPAIR_CORRUPT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("SLATE_REPAIR_CORRUPT: %w", err)
		}
		c.RepairCorrupt = b
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the adapter and codec names.
func (c *Config) Validate() error {
	switch c.Adapter {
	case "fs", "sqlite", "memory":
	default:
		return fmt.Errorf("adapter %q: must be one of fs, sqlite, memory", c.Adapter)
	}
	switch c.Codec {
	case "json", "yaml":
	default:
		return fmt.Errorf("codec %q: must be json or yaml", c.Codec)
	}
	return nil
}

// Write encodes the config as TOML to path.
func (c *Config) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
