package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/iliyamo/auth-rbac-service/internal/model"
	"github.com/iliyamo/auth-rbac-service/internal/repository"
	"github.com/iliyamo/auth-rbac-service/internal/utils"
)

// emailPattern accepts a simple local@domain.tld shape. Anything
// stricter belongs to a mail verification flow, which this service
// does not have.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserService implements administrative user management: listing,
// creation, update, deletion and role assignment. Uniqueness is
// pre-checked here for fast, friendly failures, but the unique
// indexes in the store remain the authoritative guard; a concurrent
// writer that slips past the pre-check still fails at commit with the
// same sentinel error.
type UserService struct {
	users      UserStore
	bcryptCost int
}

// NewUserService returns a UserService over the given store using the
// given bcrypt cost for password hashing.
func NewUserService(users UserStore, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

// UserInput carries the fields accepted when creating or updating a
// user. Password is plaintext here and hashed before it reaches the
// store; it is never logged or persisted as-is.
type UserInput struct {
	Username string
	Email    string
	Password string
	RoleIDs  []uint64
}

// List returns all users with their role sets.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.GetAll(ctx)
}

// Get returns one user by id with its role set.
func (s *UserService) Get(ctx context.Context, id uint64) (model.User, error) {
	return s.users.GetByID(ctx, id)
}

// Create validates the input, hashes the password and persists the
// user together with its role associations in one transaction.
func (s *UserService) Create(ctx context.Context, in UserInput) (model.User, error) {
	if err := s.validate(ctx, in, 0); err != nil {
		return model.User{}, err
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, &u, in.RoleIDs); err != nil {
		return model.User{}, err
	}
	return s.users.GetByID(ctx, u.ID)
}

// Update validates the input, re-hashes the password and rewrites the
// user row and its role set. The role set after the call is exactly
// in.RoleIDs; prior associations not in the new set are gone.
func (s *UserService) Update(ctx context.Context, id uint64, in UserInput) (model.User, error) {
	if err := s.validate(ctx, in, id); err != nil {
		return model.User{}, err
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{
		ID:           id,
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
	}
	if err := s.users.Update(ctx, &u, in.RoleIDs); err != nil {
		return model.User{}, err
	}
	return s.users.GetByID(ctx, id)
}

// SetRoles replaces the user's role set with exactly roleIDs.
func (s *UserService) SetRoles(ctx context.Context, userID uint64, roleIDs []uint64) error {
	return s.users.SetRoles(ctx, userID, roleIDs)
}

// Delete removes the user; its role associations are cleared in the
// same transaction.
func (s *UserService) Delete(ctx context.Context, id uint64) error {
	return s.users.Delete(ctx, id)
}

// validate enforces the pre-commit rules: username and password
// present, email well-formed, username and email not already taken.
// selfID is the id of the user being updated, so a user keeping its
// own username or email does not trip the uniqueness check; pass 0 on
// create.
func (s *UserService) validate(ctx context.Context, in UserInput, selfID uint64) error {
	if strings.TrimSpace(in.Username) == "" {
		return ErrUsernameRequired
	}
	if strings.TrimSpace(in.Password) == "" {
		return ErrPasswordRequired
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}

	var current model.User
	if selfID != 0 {
		var err error
		if current, err = s.users.GetByID(ctx, selfID); err != nil {
			return err
		}
	}

	username := strings.TrimSpace(in.Username)
	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return err
	}
	if taken && !strings.EqualFold(current.Username, username) {
		return repository.ErrUsernameExists
	}

	taken, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if taken && !strings.EqualFold(current.Email, email) {
		return repository.ErrEmailExists
	}
	return nil
}
