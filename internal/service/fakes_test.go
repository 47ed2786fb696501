package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/auth-rbac-service/internal/model"
	"github.com/iliyamo/auth-rbac-service/internal/repository"
)

// In-memory store fakes. They enforce the same uniqueness rules the
// MySQL schema does and return the same repository sentinels, so the
// services can be tested without a database.

type fakeUserStore struct {
	mu       sync.Mutex
	nextID   uint64
	users    map[uint64]model.User
	roleSets map[uint64][]uint64
	roleDefs map[uint64]model.Role
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:    make(map[uint64]model.User),
		roleSets: make(map[uint64][]uint64),
		roleDefs: make(map[uint64]model.Role),
	}
}

func (f *fakeUserStore) defineRole(r model.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roleDefs[r.ID] = r
}

func (f *fakeUserStore) withRoles(u model.User) model.User {
	u.Roles = nil
	for _, id := range f.roleSets[u.ID] {
		if r, ok := f.roleDefs[id]; ok {
			u.Roles = append(u.Roles, r)
		} else {
			u.Roles = append(u.Roles, model.Role{ID: id})
		}
	}
	return u
}

func (f *fakeUserStore) GetAll(context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.users {
		out = append(out, f.withRoles(u))
	}
	return out, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return f.withRoles(u), nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Username, username) {
			return f.withRoles(u), nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUserStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

// checkUnique mirrors the unique indexes; id is excluded so updates
// can keep their own values.
func (f *fakeUserStore) checkUnique(username, email string, id uint64) error {
	for _, u := range f.users {
		if u.ID == id {
			continue
		}
		if strings.EqualFold(u.Username, username) {
			return repository.ErrUsernameExists
		}
		if strings.EqualFold(u.Email, email) {
			return repository.ErrEmailExists
		}
	}
	return nil
}

func (f *fakeUserStore) checkRoleIDs(roleIDs []uint64) error {
	for _, id := range roleIDs {
		if _, ok := f.roleDefs[id]; !ok {
			return repository.ErrNotFound
		}
	}
	return nil
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User, roleIDs []uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkUnique(u.Username, u.Email, 0); err != nil {
		return err
	}
	if err := f.checkRoleIDs(roleIDs); err != nil {
		return err
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = *u
	f.roleSets[u.ID] = append([]uint64(nil), roleIDs...)
	return nil
}

func (f *fakeUserStore) Update(_ context.Context, u *model.User, roleIDs []uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := f.checkUnique(u.Username, u.Email, u.ID); err != nil {
		return err
	}
	if err := f.checkRoleIDs(roleIDs); err != nil {
		return err
	}
	cur.Username = u.Username
	cur.Email = u.Email
	cur.PasswordHash = u.PasswordHash
	cur.UpdatedAt = time.Now().UTC()
	f.users[u.ID] = cur
	f.roleSets[u.ID] = append([]uint64(nil), roleIDs...)
	return nil
}

func (f *fakeUserStore) SetRoles(_ context.Context, userID uint64, roleIDs []uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[userID]; !ok {
		return repository.ErrNotFound
	}
	if err := f.checkRoleIDs(roleIDs); err != nil {
		return err
	}
	f.roleSets[userID] = append([]uint64(nil), roleIDs...)
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	delete(f.roleSets, id)
	return nil
}

type fakeRoleStore struct {
	mu       sync.Mutex
	nextID   uint64
	roles    map[uint64]model.Role
	assigned map[uint64]bool // role id -> referenced by some user
}

func newFakeRoleStore() *fakeRoleStore {
	return &fakeRoleStore{
		roles:    make(map[uint64]model.Role),
		assigned: make(map[uint64]bool),
	}
}

func (f *fakeRoleStore) GetAll(context.Context) ([]model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Role
	for _, r := range f.roles {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRoleStore) GetByID(_ context.Context, id uint64) (model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.roles[id]
	if !ok {
		return model.Role{}, repository.ErrNotFound
	}
	return r, nil
}

func (f *fakeRoleStore) ExistsByName(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.roles {
		if r.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRoleStore) ExistsByDescription(_ context.Context, description string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.roles {
		if r.Description == description {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRoleStore) checkUnique(name, description string, id uint64) error {
	for _, r := range f.roles {
		if r.ID == id {
			continue
		}
		if r.Name == name {
			return repository.ErrRoleNameExists
		}
		if r.Description == description {
			return repository.ErrRoleDescriptionExists
		}
	}
	return nil
}

func (f *fakeRoleStore) Create(_ context.Context, role *model.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkUnique(role.Name, role.Description, 0); err != nil {
		return err
	}
	f.nextID++
	role.ID = f.nextID
	role.CreatedAt = time.Now().UTC()
	role.UpdatedAt = role.CreatedAt
	f.roles[role.ID] = *role
	return nil
}

func (f *fakeRoleStore) Update(_ context.Context, role *model.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.roles[role.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := f.checkUnique(role.Name, role.Description, role.ID); err != nil {
		return err
	}
	cur.Name = role.Name
	cur.Description = role.Description
	cur.UpdatedAt = time.Now().UTC()
	f.roles[role.ID] = cur
	return nil
}

func (f *fakeRoleStore) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[id]; !ok {
		return repository.ErrNotFound
	}
	if f.assigned[id] {
		return repository.ErrRoleInUse
	}
	delete(f.roles, id)
	return nil
}

type fakeTokenStore struct {
	mu     sync.Mutex
	nextID uint64
	tokens map[string]model.RefreshToken // keyed by hash
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]model.RefreshToken)}
}

func (f *fakeTokenStore) Store(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[tokenHash]; ok {
		return repository.ErrDuplicate
	}
	f.nextID++
	f.tokens[tokenHash] = model.RefreshToken{
		ID:        f.nextID,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: exp,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (f *fakeTokenStore) Find(_ context.Context, tokenHash string) (model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[tokenHash]
	if !ok {
		return model.RefreshToken{}, repository.ErrNotFound
	}
	return t, nil
}

func (f *fakeTokenStore) Replace(_ context.Context, oldHash string, userID uint64, newHash string, exp time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.tokens[oldHash]
	if !ok || old.RevokedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	old.RevokedAt = &now
	f.tokens[oldHash] = old
	f.nextID++
	f.tokens[newHash] = model.RefreshToken{
		ID:        f.nextID,
		UserID:    userID,
		TokenHash: newHash,
		ExpiresAt: exp,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (f *fakeTokenStore) RevokeAllForUser(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	for h, t := range f.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
			f.tokens[h] = t
		}
	}
	return nil
}
