package model

import "time"

// User represents a row in the `users` table.  The json tags are
// omitted because these structs are used internally by the
// repository layer; handlers define separate response types with
// appropriate JSON tags.  Roles carries the user's full role set as
// loaded through the user_roles join table.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name; lookups are case-insensitive.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password; never exposed.
//  Roles        – the set of roles assigned through user_roles.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Roles        []Role    // loaded via user_roles
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RoleNames returns the names of the user's assigned roles.  Used
// when building JWT claims and event payloads.
func (u *User) RoleNames() []string {
	names := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		names[i] = r.Name
	}
	return names
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// UserRole models a row in the `user_roles` join table.  It is never
// addressed on its own; the owning user's lifecycle drives inserts
// and deletes, and the (UserID, RoleID) pair is unique.
type UserRole struct {
	UserID uint64 // user_roles.user_id
	RoleID uint64 // user_roles.role_id
}
