package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/auth-rbac-service/internal/model"
)

// UserRepo provides access to the users and user_roles tables. Writes
// that touch more than one row run inside a transaction so no
// concurrent reader ever observes a partially-applied role set. All
// timestamp fields are stored in UTC.
type UserRepo struct{ DB *sql.DB }

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, username, email, password_hash, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }, u *model.User) error {
	return row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
}

// GetAll returns every user with their role sets loaded.
func (r *UserRepo) GetAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	byID := make(map[uint64]int)
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		byID[u.ID] = len(users)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return users, nil
	}

	// One join query for all role sets instead of a query per user.
	roleRows, err := r.DB.QueryContext(ctx,
		`SELECT ur.user_id, r.id, r.name, r.description, r.created_at, r.updated_at
		 FROM user_roles ur
		 JOIN roles r ON r.id = ur.role_id
		 ORDER BY ur.user_id, r.id`)
	if err != nil {
		return nil, err
	}
	defer roleRows.Close()
	for roleRows.Next() {
		var (
			userID uint64
			role   model.Role
		)
		if err := roleRows.Scan(&userID, &role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		if i, ok := byID[userID]; ok {
			users[i].Roles = append(users[i].Roles, role)
		}
	}
	return users, roleRows.Err()
}

// GetByID fetches a user by id with roles loaded. Returns ErrNotFound
// when no such user exists.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id), &u)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	if u.Roles, err = r.rolesOf(ctx, u.ID); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// GetByUsername fetches a user by username with roles loaded. The
// match is case-insensitive exact. Returns ErrNotFound when no such
// user exists.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	username = strings.TrimSpace(username)
	var u model.User
	err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE LOWER(username)=LOWER(?) LIMIT 1", username), &u)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	if u.Roles, err = r.rolesOf(ctx, u.ID); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// ExistsByUsername reports whether a user with the given username
// exists (case-insensitive). Callers must still treat the unique
// index as the authoritative guard; this is a pre-check only.
func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(username)=LOWER(?))",
		strings.TrimSpace(username)).Scan(&exists)
	return exists, err
}

// ExistsByEmail reports whether a user with the given email exists.
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email=?)",
		strings.ToLower(strings.TrimSpace(email))).Scan(&exists)
	return exists, err
}

// Create inserts a user together with its role associations in a
// single transaction and populates the generated ID on the record.
// Duplicate username/email surface as the matching sentinel error even
// when the service-level pre-check raced with a concurrent insert.
func (r *UserRepo) Create(ctx context.Context, u *model.User, roleIDs []uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash) VALUES (?,?,?)",
		strings.TrimSpace(u.Username), strings.ToLower(strings.TrimSpace(u.Email)), u.PasswordHash)
	if err != nil {
		return translateError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	if err := insertUserRolesTx(ctx, tx, u.ID, roleIDs); err != nil {
		return translateError(err)
	}
	return tx.Commit()
}

// Update rewrites the user row and replaces its role set, all in one
// transaction. The role replacement is clear-then-insert so the set
// after commit is exactly roleIDs; readers never see the intermediate
// cleared state.
func (r *UserRepo) Update(ctx context.Context, u *model.User, roleIDs []uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE users SET username=?, email=?, password_hash=?, updated_at=NOW() WHERE id=?",
		strings.TrimSpace(u.Username), strings.ToLower(strings.TrimSpace(u.Email)), u.PasswordHash, u.ID)
	if err != nil {
		return translateError(err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		// RowsAffected can also be 0 for a no-change update; confirm the row exists.
		var exists bool
		if err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM users WHERE id=?)", u.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id=?", u.ID); err != nil {
		return err
	}
	if err := insertUserRolesTx(ctx, tx, u.ID, roleIDs); err != nil {
		return translateError(err)
	}
	return tx.Commit()
}

// SetRoles replaces the user's role set with exactly roleIDs. Clear
// and insert run in one transaction; no partial state is visible to
// concurrent readers.
func (r *UserRepo) SetRoles(ctx context.Context, userID uint64, roleIDs []uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE id=?)", userID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id=?", userID); err != nil {
		return err
	}
	if err := insertUserRolesTx(ctx, tx, userID, roleIDs); err != nil {
		return translateError(err)
	}
	return tx.Commit()
}

// Delete removes the user's role associations and then the user row
// itself in one transaction. Returns ErrNotFound when the user does
// not exist; the role associations are left untouched in that case
// because the transaction rolls back.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// rolesOf loads the role set of a single user.
func (r *UserRepo) rolesOf(ctx context.Context, userID uint64) ([]model.Role, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT r.id, r.name, r.description, r.created_at, r.updated_at
		 FROM user_roles ur
		 JOIN roles r ON r.id = ur.role_id
		 WHERE ur.user_id=? ORDER BY r.id`, userID)
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

// insertUserRolesTx bulk-inserts user_roles rows within the provided
// transaction. Passing an empty slice has no effect and returns nil.
func insertUserRolesTx(ctx context.Context, tx *sql.Tx, userID uint64, roleIDs []uint64) error {
	if len(roleIDs) == 0 {
		return nil
	}
	query := "INSERT INTO user_roles (user_id, role_id) VALUES "
	args := make([]interface{}, 0, len(roleIDs)*2)
	for i, roleID := range roleIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, userID, roleID)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}
