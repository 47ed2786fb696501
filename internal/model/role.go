package model

import "time"

// Role represents a row in the `roles` table.  Both the name and the
// description carry unique indexes; a role may be referenced by any
// number of users through user_roles.
//
// Fields:
//  ID          – numeric identifier of the role.
//  Name        – unique role name (e.g. Admin).
//  Description – unique human-readable description.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Role struct {
	ID          uint64    // roles.id
	Name        string    // roles.name
	Description string    // roles.description
	CreatedAt   time.Time // roles.created_at
	UpdatedAt   time.Time // roles.updated_at
}
