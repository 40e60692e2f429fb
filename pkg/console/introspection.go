package console

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	RolesKey string `json:"roles_key"`
	UsersKey string `json:"users_key"`
	Store    any    `json:"store"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	return ServiceState{
		RolesKey: s.roles.Key(),
		UsersKey: s.users.Key(),
		Store:    s.store.State(),
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
