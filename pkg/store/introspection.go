package store

import (
	"fmt"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	BackendType   string   `json:"backend_type"`
	Codec         string   `json:"codec"`
	RepairCorrupt bool     `json:"repair_corrupt"`
	LoadedKeys    []string `json:"loaded_keys"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	backendType := fmt.Sprintf("%T", s.backend)
	if comp, ok := s.backend.(introspection.Component); ok {
		backendType = comp.ComponentType()
	}

	return StoreState{
		BackendType:   backendType,
		Codec:         s.codec.Name(),
		RepairCorrupt: s.repair,
		LoadedKeys:    s.Keys(),
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
