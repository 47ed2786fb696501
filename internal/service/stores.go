package service

import (
	"context"
	"time"

	"github.com/iliyamo/auth-rbac-service/internal/model"
)

// UserStore is the persistence contract the services need for users
// and their role sets. The repository package implements it over
// MySQL; tests substitute an in-memory fake. Multi-row writes
// (Create, Update, SetRoles, Delete) are atomic: a concurrent reader
// sees either the state before the call or the state after it, never
// a partially-applied role set.
type UserStore interface {
	GetAll(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	// GetByUsername matches case-insensitively.
	GetByUsername(ctx context.Context, username string) (model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u *model.User, roleIDs []uint64) error
	Update(ctx context.Context, u *model.User, roleIDs []uint64) error
	SetRoles(ctx context.Context, userID uint64, roleIDs []uint64) error
	Delete(ctx context.Context, id uint64) error
}

// RoleStore is the persistence contract for roles.
type RoleStore interface {
	GetAll(ctx context.Context) ([]model.Role, error)
	GetByID(ctx context.Context, id uint64) (model.Role, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	ExistsByDescription(ctx context.Context, description string) (bool, error)
	Create(ctx context.Context, role *model.Role) error
	Update(ctx context.Context, role *model.Role) error
	Delete(ctx context.Context, id uint64) error
}

// TokenStore is the persistence contract for refresh tokens. Find
// returns the row regardless of validity; expiry and revocation are
// judged by the caller. Replace revokes the old token and stores the
// new one atomically; when the old token is already revoked or gone it
// returns repository.ErrNotFound without storing anything, so at most
// one concurrent rotation of the same token can succeed.
type TokenStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	Find(ctx context.Context, tokenHash string) (model.RefreshToken, error)
	Replace(ctx context.Context, oldHash string, userID uint64, newHash string, exp time.Time) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}
