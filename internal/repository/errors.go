// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without parsing driver errors themselves. Uniqueness
// violations are detected at commit time from the MySQL duplicate-key
// error, which makes the storage constraint the authoritative guard;
// the ExistsBy* pre-checks in the services are only a fast path.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrUsernameExists is returned when an insert or update collides with
// the unique index on users.username.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists is returned when an insert or update collides with
// the unique index on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrRoleNameExists is returned when an insert or update collides with
// the unique index on roles.name.
var ErrRoleNameExists = errors.New("role name already exists")

// ErrRoleDescriptionExists is returned when an insert or update
// collides with the unique index on roles.description.
var ErrRoleDescriptionExists = errors.New("role description already exists")

// ErrDuplicate is returned for a duplicate-key violation that does not
// match one of the known unique indexes (e.g. a duplicate
// user_roles pair).
var ErrDuplicate = errors.New("duplicate key")

// ErrRoleInUse is returned when a role cannot be deleted because one
// or more users still reference it. Handlers should translate this
// into an HTTP 409 response.
var ErrRoleInUse = errors.New("role still assigned to users")

// MySQL error numbers surfaced by the driver.
const (
	mysqlErrDupEntry      = 1062 // ER_DUP_ENTRY
	mysqlErrRowReferenced = 1451 // ER_ROW_IS_REFERENCED_2
	mysqlErrNoReferenced  = 1452 // ER_NO_REFERENCED_ROW_2
)

// translateError maps low-level MySQL errors onto the package
// sentinels. A duplicate-key error names the violated index in its
// message, which is enough to pick the matching sentinel. Foreign key
// failures on user_roles mean the referenced user or role is gone and
// are reported as ErrNotFound. Anything unrecognized is passed
// through untouched so unexpected storage failures stay visible.
func translateError(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case mysqlErrDupEntry:
		msg := me.Message
		switch {
		case strings.Contains(msg, "users.uq_users_username"), strings.Contains(msg, "uq_users_username"):
			return ErrUsernameExists
		case strings.Contains(msg, "users.uq_users_email"), strings.Contains(msg, "uq_users_email"):
			return ErrEmailExists
		case strings.Contains(msg, "roles.uq_roles_name"), strings.Contains(msg, "uq_roles_name"):
			return ErrRoleNameExists
		case strings.Contains(msg, "roles.uq_roles_description"), strings.Contains(msg, "uq_roles_description"):
			return ErrRoleDescriptionExists
		}
		return ErrDuplicate
	case mysqlErrRowReferenced:
		return ErrRoleInUse
	case mysqlErrNoReferenced:
		return ErrNotFound
	}
	return err
}
