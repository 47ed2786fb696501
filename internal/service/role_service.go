package service

import (
	"context"
	"strings"

	"github.com/iliyamo/auth-rbac-service/internal/model"
	"github.com/iliyamo/auth-rbac-service/internal/repository"
)

// RoleService implements role management. Role name and description
// are each globally unique; as with users, the pre-checks here are a
// fast path and the store's unique indexes decide under concurrency.
type RoleService struct {
	roles RoleStore
}

// NewRoleService returns a RoleService over the given store.
func NewRoleService(roles RoleStore) *RoleService {
	return &RoleService{roles: roles}
}

// RoleInput carries the fields accepted when creating or updating a
// role.
type RoleInput struct {
	Name        string
	Description string
}

// List returns all roles.
func (s *RoleService) List(ctx context.Context) ([]model.Role, error) {
	return s.roles.GetAll(ctx)
}

// Get returns one role by id.
func (s *RoleService) Get(ctx context.Context, id uint64) (model.Role, error) {
	return s.roles.GetByID(ctx, id)
}

// Create persists a new role after checking name and description
// uniqueness.
func (s *RoleService) Create(ctx context.Context, in RoleInput) (model.Role, error) {
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)

	if taken, err := s.roles.ExistsByName(ctx, name); err != nil {
		return model.Role{}, err
	} else if taken {
		return model.Role{}, repository.ErrRoleNameExists
	}
	if taken, err := s.roles.ExistsByDescription(ctx, description); err != nil {
		return model.Role{}, err
	} else if taken {
		return model.Role{}, repository.ErrRoleDescriptionExists
	}

	role := model.Role{Name: name, Description: description}
	if err := s.roles.Create(ctx, &role); err != nil {
		return model.Role{}, err
	}
	return s.roles.GetByID(ctx, role.ID)
}

// Update rewrites a role's name and description. A role keeping its
// own name or description does not trip the uniqueness checks.
func (s *RoleService) Update(ctx context.Context, id uint64, in RoleInput) (model.Role, error) {
	existing, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return model.Role{}, err
	}

	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)

	if taken, err := s.roles.ExistsByName(ctx, name); err != nil {
		return model.Role{}, err
	} else if taken && existing.Name != name {
		return model.Role{}, repository.ErrRoleNameExists
	}
	if taken, err := s.roles.ExistsByDescription(ctx, description); err != nil {
		return model.Role{}, err
	} else if taken && existing.Description != description {
		return model.Role{}, repository.ErrRoleDescriptionExists
	}

	role := model.Role{ID: id, Name: name, Description: description}
	if err := s.roles.Update(ctx, &role); err != nil {
		return model.Role{}, err
	}
	return s.roles.GetByID(ctx, id)
}

// Delete removes a role. Deleting a role still assigned to users
// fails with repository.ErrRoleInUse; there is no cascade.
func (s *RoleService) Delete(ctx context.Context, id uint64) error {
	return s.roles.Delete(ctx, id)
}
