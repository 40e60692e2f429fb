// Package console implements the role and user administration flows on
// top of the persisted collections.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/aretw0/lifecycle"
	"github.com/google/uuid"

	slotsource "github.com/aretw0/slate/pkg/adapters/lifecycle"
	"github.com/aretw0/slate/pkg/core"
	"github.com/aretw0/slate/pkg/form"
	"github.com/aretw0/slate/pkg/store"
	"github.com/aretw0/slate/pkg/typed"
)

// Default storage keys. They are part of the on-disk format.
const (
	DefaultRolesKey = "slate.roles"
	DefaultUsersKey = "slate.users"
)

// Config holds the configuration for the Service.
type Config struct {
	Store     *store.Store
	RolesKey  string
	UsersKey  string
	SeedRoles []core.Role // nil selects DefaultRoles
	SeedUsers []core.User // nil selects DefaultUsers
	Logger    *slog.Logger
	NewID     func() string // user ID generator, defaults to uuid.NewString
}

// Service handles the business logic for roles and users.
type Service struct {
	store  *store.Store
	roles  *typed.Collection[core.Role]
	users  *typed.Collection[core.User]
	logger *slog.Logger
	newID  func() string
}

// NewService creates a new Service.
func NewService(cfg Config) *Service {
	if cfg.RolesKey == "" {
		cfg.RolesKey = DefaultRolesKey
	}
	if cfg.UsersKey == "" {
		cfg.UsersKey = DefaultUsersKey
	}
	if cfg.SeedRoles == nil {
		cfg.SeedRoles = DefaultRoles()
	}
	if cfg.SeedUsers == nil {
		cfg.SeedUsers = DefaultUsers()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Service{
		store:  cfg.Store,
		roles:  typed.NewCollection(cfg.Store, cfg.RolesKey, cfg.SeedRoles),
		users:  typed.NewCollection(cfg.Store, cfg.UsersKey, cfg.SeedUsers),
		logger: cfg.Logger,
		newID:  cfg.NewID,
	}
}

// Roles exposes the role collection.
func (s *Service) Roles() *typed.Collection[core.Role] { return s.roles }

// Users exposes the user collection.
func (s *Service) Users() *typed.Collection[core.User] { return s.users }

// Store returns the store backing both collections.
func (s *Service) Store() *store.Store { return s.store }

// Close releases the backend when it holds resources (e.g. a database
// handle).
func (s *Service) Close() error {
	if c, ok := s.store.Backend().(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ListRoles returns all roles in insertion order.
func (s *Service) ListRoles(ctx context.Context) ([]core.Role, error) {
	return s.roles.List(ctx)
}

// ListUsers returns all users in insertion order.
func (s *Service) ListUsers(ctx context.Context) ([]core.User, error) {
	return s.users.List(ctx)
}

// GetRole retrieves a role by code.
func (s *Service) GetRole(ctx context.Context, code string) (core.Role, error) {
	return s.roles.Get(ctx, code)
}

// GetUser retrieves a user by code.
func (s *Service) GetUser(ctx context.Context, code string) (core.User, error) {
	return s.users.Get(ctx, code)
}

// PreviewRoleCode returns the code a role named name would get right now.
func (s *Service) PreviewRoleCode(ctx context.Context, name string) (string, error) {
	return s.roles.DeriveCode(ctx, name)
}

// PreviewUserCode returns the code a user named name would get right now.
func (s *Service) PreviewUserCode(ctx context.Context, name string) (string, error) {
	return s.users.DeriveCode(ctx, name)
}

// NewRoleDraft starts a role form bound to the live role collection.
func (s *Service) NewRoleDraft() *form.Draft[core.Role] {
	return form.NewDraft(s.roles)
}

// NewUserDraft starts a user form bound to the live user collection.
func (s *Service) NewUserDraft() *form.Draft[core.User] {
	return form.NewDraft(s.users)
}

// CreateRole validates the form and appends a new role.
func (s *Service) CreateRole(ctx context.Context, in RoleInput) (core.Role, error) {
	d := s.NewRoleDraft()
	if _, err := d.SetName(ctx, in.Name); err != nil {
		return core.Role{}, err
	}
	return s.SubmitRole(ctx, d, in.Description)
}

// SubmitRole validates and commits a role draft. The code is derived again
// at this point; the draft's preview is not trusted.
func (s *Service) SubmitRole(ctx context.Context, d *form.Draft[core.Role], description string) (core.Role, error) {
	name := strings.TrimSpace(d.Name())
	description = strings.TrimSpace(description)
	if err := ValidateRole(RoleInput{Name: name, Description: description}); err != nil {
		return core.Role{}, err
	}

	role, err := d.Submit(ctx, func(code string) core.Role {
		return core.Role{Code: code, Name: name, Description: description}
	})
	if err != nil {
		return core.Role{}, fmt.Errorf("create role: %w", err)
	}
	s.logger.Info("role created", "code", role.Code)
	return role, nil
}

// CreateUser validates the form and appends a new user.
func (s *Service) CreateUser(ctx context.Context, in UserInput) (core.User, error) {
	d := s.NewUserDraft()
	if _, err := d.SetName(ctx, in.Name); err != nil {
		return core.User{}, err
	}
	return s.SubmitUser(ctx, d, in)
}

// SubmitUser validates and commits a user draft. in.Name is ignored in
// favour of the draft's name.
func (s *Service) SubmitUser(ctx context.Context, d *form.Draft[core.User], in UserInput) (core.User, error) {
	in.Name = strings.TrimSpace(d.Name())
	in.Email = strings.TrimSpace(in.Email)
	if in.Status == "" {
		in.Status = core.StatusPending
	}

	var ve ValidationError
	checkUser(&ve, in)

	users, err := s.users.List(ctx)
	if err != nil {
		return core.User{}, err
	}
	checkEmailFree(&ve, users, in.Email)

	roles, err := s.resolveRoles(ctx, &ve, in.Roles)
	if err != nil {
		return core.User{}, err
	}
	if ve.HasErrors() {
		return core.User{}, &ve
	}

	id := s.newID()
	// The email is checked again against the snapshot being written to; the
	// list above may be stale by the time the collection lock is taken.
	unique := func(snapshot []core.User) error {
		var ve ValidationError
		checkEmailFree(&ve, snapshot, in.Email)
		return ve.orNil()
	}
	user, err := d.SubmitChecked(ctx, unique, func(code string) core.User {
		return core.User{
			ID:     id,
			Code:   code,
			Name:   in.Name,
			Email:  in.Email,
			Status: in.Status,
			Roles:  roles,
		}
	})
	var lateErr *ValidationError
	if errors.As(err, &lateErr) {
		return core.User{}, lateErr
	}
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user created", "code", user.Code, "id", user.ID)
	return user, nil
}

func checkEmailFree(ve *ValidationError, users []core.User, email string) {
	if email == "" {
		return
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			ve.add("email", "already used by %s", u.Code)
			return
		}
	}
}

// AssignRoles adds role codes to a user. Codes the user already holds are
// ignored.
func (s *Service) AssignRoles(ctx context.Context, userCode string, roleCodes ...string) (core.User, error) {
	var ve ValidationError
	codes, err := s.resolveRoles(ctx, &ve, roleCodes)
	if err != nil {
		return core.User{}, err
	}
	if ve.HasErrors() {
		return core.User{}, &ve
	}

	var added []string
	user, err := s.users.Update(ctx, userCode, func(u core.User) (core.User, error) {
		next := slices.Clone(u.Roles)
		for _, c := range codes {
			if !slices.Contains(next, c) {
				next = append(next, c)
				added = append(added, c)
			}
		}
		if len(added) == 0 {
			return u, typed.ErrUnchanged
		}
		u.Roles = next
		return u, nil
	})
	if err != nil {
		return core.User{}, err
	}
	if len(added) > 0 {
		s.logger.Info("roles assigned", "user", user.Code, "roles", added)
	}
	return user, nil
}

// RevokeRoles removes role codes from a user. Codes the user does not hold
// are ignored.
func (s *Service) RevokeRoles(ctx context.Context, userCode string, roleCodes ...string) (core.User, error) {
	changed := false
	user, err := s.users.Update(ctx, userCode, func(u core.User) (core.User, error) {
		next := slices.DeleteFunc(slices.Clone(u.Roles), func(c string) bool {
			return slices.Contains(roleCodes, c)
		})
		if len(next) == len(u.Roles) {
			return u, typed.ErrUnchanged
		}
		u.Roles = next
		changed = true
		return u, nil
	})
	if err != nil {
		return core.User{}, err
	}
	if changed {
		s.logger.Info("roles revoked", "user", user.Code, "roles", roleCodes)
	}
	return user, nil
}

// resolveRoles deduplicates codes and records unknown ones on ve.
func (s *Service) resolveRoles(ctx context.Context, ve *ValidationError, codes []string) ([]string, error) {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" || slices.Contains(out, c) {
			continue
		}
		ok, err := s.roles.Has(ctx, c)
		if err != nil {
			return nil, err
		}
		if !ok {
			ve.add("roles", "unknown role %q", c)
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Watch streams changes made to the role and user slots by other
// processes, as core.Event values. Each change drops the in-memory snapshot
// before it is delivered, so the next read sees the new content. The
// channel closes when ctx is done.
func (s *Service) Watch(ctx context.Context) (<-chan lifecycle.Event, error) {
	w, ok := s.store.Backend().(core.Watchable)
	if !ok {
		return nil, errors.New("backend does not support watching")
	}
	src := slotsource.NewSource(slotsource.Config{
		Watcher: w,
		Keys:    []string{s.roles.Key(), s.users.Key()},
		Store:   s.store,
		Logger:  s.logger,
	})
	if err := src.Start(ctx); err != nil {
		return nil, err
	}
	return src.Events(), nil
}
