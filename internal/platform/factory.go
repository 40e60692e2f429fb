package platform

import (
	"context"

	"github.com/aretw0/slate/pkg/console"
)

// New wires a console service over the backend selected by the options.
//
//	svc, err := platform.New(ctx, ".slate", platform.WithAdapter("sqlite"))
//
// The uri argument is adapter-specific (see Init). Call svc.Close when done.
func New(ctx context.Context, uri string, opts ...Option) (*console.Service, error) {
	o := apply(opts)
	st, err := openStore(ctx, uri, o)
	if err != nil {
		return nil, err
	}
	return console.NewService(console.Config{
		Store:     st,
		RolesKey:  o.rolesKey,
		UsersKey:  o.usersKey,
		SeedRoles: o.seedRoles,
		SeedUsers: o.seedUsers,
		Logger:    o.logger,
	}), nil
}
