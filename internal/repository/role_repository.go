package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/auth-rbac-service/internal/model"
)

// RoleRepo provides CRUD operations for the roles table. Name and
// description each carry a unique index; violations surface through
// translateError regardless of any pre-check done above.
type RoleRepo struct{ DB *sql.DB }

// NewRoleRepo returns a new RoleRepo bound to the given database.
func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

const roleColumns = "id, name, description, created_at, updated_at"

// GetAll returns every role ordered by id.
func (r *RoleRepo) GetAll(ctx context.Context) ([]model.Role, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+roleColumns+" FROM roles ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []model.Role
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// GetByID fetches a role by id. Returns ErrNotFound when absent.
func (r *RoleRepo) GetByID(ctx context.Context, id uint64) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+roleColumns+" FROM roles WHERE id=? LIMIT 1", id).
		Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Role{}, ErrNotFound
	}
	return role, err
}

// ExistsByName reports whether a role with the given name exists.
func (r *RoleRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM roles WHERE name=?)",
		strings.TrimSpace(name)).Scan(&exists)
	return exists, err
}

// ExistsByDescription reports whether a role with the given
// description exists.
func (r *RoleRepo) ExistsByDescription(ctx context.Context, description string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM roles WHERE description=?)",
		strings.TrimSpace(description)).Scan(&exists)
	return exists, err
}

// Create inserts a role and populates its generated ID.
func (r *RoleRepo) Create(ctx context.Context, role *model.Role) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO roles (name, description) VALUES (?,?)",
		strings.TrimSpace(role.Name), strings.TrimSpace(role.Description))
	if err != nil {
		return translateError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	role.ID = uint64(id)
	return nil
}

// Update rewrites the role's name and description. Returns
// ErrNotFound when the role does not exist.
func (r *RoleRepo) Update(ctx context.Context, role *model.Role) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE roles SET name=?, description=?, updated_at=NOW() WHERE id=?",
		strings.TrimSpace(role.Name), strings.TrimSpace(role.Description), role.ID)
	if err != nil {
		return translateError(err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		var exists bool
		if err := r.DB.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM roles WHERE id=?)", role.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

// Delete removes a role. A role still referenced by any user is not
// deleted; the RESTRICT foreign key on user_roles.role_id rejects the
// delete and the error surfaces as ErrRoleInUse. No pre-check is
// needed, so a concurrent assignment cannot slip past the guard.
func (r *RoleRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM roles WHERE id=?", id)
	if err != nil {
		return translateError(err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}
