package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/iliyamo/auth-rbac-service/internal/model"
	"github.com/iliyamo/auth-rbac-service/internal/repository"
	"github.com/iliyamo/auth-rbac-service/internal/utils"
)

func newUserFixture(t *testing.T) (*UserService, *fakeUserStore) {
	t.Helper()
	users := newFakeUserStore()
	users.defineRole(model.Role{ID: 1, Name: "Admin", Description: "Admin role"})
	users.defineRole(model.Role{ID: 2, Name: "Editor", Description: "Editor role"})
	return NewUserService(users, 4), users
}

func roleIDsOf(u model.User) []uint64 {
	ids := make([]uint64, len(u.Roles))
	for i, r := range u.Roles {
		ids[i] = r.ID
	}
	return ids
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newUserFixture(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		in      UserInput
		wantErr error
	}{
		{"empty username", UserInput{Email: "bob@x.com", Password: "pw"}, ErrUsernameRequired},
		{"blank username", UserInput{Username: "   ", Email: "bob@x.com", Password: "pw"}, ErrUsernameRequired},
		{"empty password", UserInput{Username: "bob", Email: "bob@x.com"}, ErrPasswordRequired},
		{"blank password", UserInput{Username: "bob", Email: "bob@x.com", Password: "   "}, ErrPasswordRequired},
		{"missing at sign", UserInput{Username: "bob", Email: "bob.x.com", Password: "pw"}, ErrInvalidEmail},
		{"missing tld", UserInput{Username: "bob", Email: "bob@xcom", Password: "pw"}, ErrInvalidEmail},
		{"space in email", UserInput{Username: "bob", Email: "b ob@x.com", Password: "pw"}, ErrInvalidEmail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tc.in); !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc, users := newUserFixture(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, UserInput{Username: "bob", Email: "bob@x.com", Password: "pw", RoleIDs: []uint64{1}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	stored, err := users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.PasswordHash == "pw" || stored.PasswordHash == "" {
		t.Fatal("password stored in plaintext or missing")
	}
	if !utils.VerifyPassword(stored.PasswordHash, "pw") {
		t.Fatal("stored hash does not verify against original password")
	}
	if got := roleIDsOf(stored); len(got) != 1 || got[0] != 1 {
		t.Fatalf("roles = %v, want [1]", got)
	}
}

func TestCreateUserDuplicates(t *testing.T) {
	svc, _ := newUserFixture(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, UserInput{Username: "bob", Email: "bob@x.com", Password: "pw"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	// Username collision is case-insensitive.
	if _, err := svc.Create(ctx, UserInput{Username: "BOB", Email: "other@x.com", Password: "pw"}); !errors.Is(err, repository.ErrUsernameExists) {
		t.Fatalf("duplicate username: got %v", err)
	}
	if _, err := svc.Create(ctx, UserInput{Username: "carol", Email: "bob@x.com", Password: "pw"}); !errors.Is(err, repository.ErrEmailExists) {
		t.Fatalf("duplicate email: got %v", err)
	}
}

func TestUpdateUserKeepsOwnIdentity(t *testing.T) {
	svc, _ := newUserFixture(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, UserInput{Username: "bob", Email: "bob@x.com", Password: "pw", RoleIDs: []uint64{1}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Same username and email must not trip the uniqueness checks.
	updated, err := svc.Update(ctx, u.ID, UserInput{Username: "bob", Email: "bob@x.com", Password: "pw2", RoleIDs: []uint64{2}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := roleIDsOf(updated); len(got) != 1 || got[0] != 2 {
		t.Fatalf("roles after update = %v, want [2]", got)
	}
}

func TestUpdateUserReplacesRoleSet(t *testing.T) {
	svc, _ := newUserFixture(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, UserInput{Username: "bob", Email: "bob@x.com", Password: "pw", RoleIDs: []uint64{1, 2}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	updated, err := svc.Update(ctx, u.ID, UserInput{Username: "bob", Email: "bob@x.com", Password: "pw", RoleIDs: nil})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := roleIDsOf(updated); len(got) != 0 {
		t.Fatalf("roles after clearing update = %v, want []", got)
	}
}

func TestUpdateUserNotFound(t *testing.T) {
	svc, _ := newUserFixture(t)
	if _, err := svc.Update(context.Background(), 999, UserInput{Username: "x", Email: "x@x.com", Password: "pw"}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestSetRoles(t *testing.T) {
	svc, users := newUserFixture(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, UserInput{Username: "bob", Email: "bob@x.com", Password: "pw", RoleIDs: []uint64{1}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.SetRoles(ctx, u.ID, []uint64{1, 2}); err != nil {
		t.Fatalf("set roles: %v", err)
	}
	stored, _ := users.GetByID(ctx, u.ID)
	if got := roleIDsOf(stored); len(got) != 2 {
		t.Fatalf("roles = %v, want [1 2]", got)
	}

	if err := svc.SetRoles(ctx, 999, []uint64{1}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("set roles on missing user: got %v", err)
	}
	// Referencing a role that does not exist must fail.
	if err := svc.SetRoles(ctx, u.ID, []uint64{42}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("set unknown role: got %v", err)
	}
}

func TestSetRolesAtomicUnderConcurrentReads(t *testing.T) {
	svc, _ := newUserFixture(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, UserInput{Username: "bob", Email: "bob@x.com", Password: "pw", RoleIDs: []uint64{1}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Flip the role set between {1} and {2} while readers watch;
	// every observed set must be exactly one of the two, never a
	// mix or a partially-cleared set.
	done := make(chan struct{})
	var readers sync.WaitGroup
	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				got, err := svc.Get(ctx, u.ID)
				if err != nil {
					t.Errorf("get: %v", err)
					return
				}
				ids := roleIDsOf(got)
				if len(ids) != 1 || (ids[0] != 1 && ids[0] != 2) {
					t.Errorf("observed partial role set %v", ids)
					return
				}
			}
		}()
	}

	sets := [][]uint64{{2}, {1}}
	for i := 0; i < 200; i++ {
		if err := svc.SetRoles(ctx, u.ID, sets[i%2]); err != nil {
			t.Fatalf("set roles: %v", err)
		}
	}
	close(done)
	readers.Wait()
}

func TestDeleteUser(t *testing.T) {
	svc, users := newUserFixture(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, UserInput{Username: "bob", Email: "bob@x.com", Password: "pw", RoleIDs: []uint64{1}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := users.GetByID(ctx, u.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("user still present after delete: %v", err)
	}
	if err := svc.Delete(ctx, u.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}
