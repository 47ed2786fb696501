package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/auth-rbac-service/internal/repository"
	"github.com/iliyamo/auth-rbac-service/internal/utils"
)

// AuthService runs the login and refresh flows. Every invocation is a
// fresh run seeded only by persisted data; the service keeps no state
// between requests and is safe for concurrent use. The signing secret
// is injected at construction and held in memory only.
type AuthService struct {
	users          UserStore
	tokens         TokenStore
	secret         string
	accessTTLMin   int
	refreshTTLDays int
}

// NewAuthService wires an AuthService with its stores, signing secret
// and token lifetimes.
func NewAuthService(users UserStore, tokens TokenStore, secret string, accessTTLMin, refreshTTLDays int) *AuthService {
	return &AuthService{
		users:          users,
		tokens:         tokens,
		secret:         secret,
		accessTTLMin:   accessTTLMin,
		refreshTTLDays: refreshTTLDays,
	}
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	UserID       uint64
	Username     string
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string // raw value, returned to the client once
	RefreshExp   time.Time
}

// Login verifies the credentials and issues a fresh token pair. An
// unknown username and a wrong password both fail with
// ErrInvalidCredentials; the caller cannot distinguish them. The
// refresh token is persisted (hashed) before the pair is returned.
func (s *AuthService) Login(ctx context.Context, username, password string) (TokenPair, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return TokenPair{}, ErrInvalidCredentials
	}

	access, err := utils.NewAccessToken(s.secret, u.ID, u.Username, u.RoleNames(), s.accessTTLMin)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := utils.NewRefreshToken(s.refreshTTLDays)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.tokens.Store(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		UserID:       u.ID,
		Username:     u.Username,
		AccessToken:  access.Token,
		AccessExp:    access.Exp,
		RefreshToken: refresh.Raw,
		RefreshExp:   refresh.Exp,
	}, nil
}

// Refresh exchanges a stored, unexpired refresh token for a new token
// pair. The presented token is revoked in the same transaction that
// stores its successor, so it cannot be replayed after rotation. A
// missing, revoked or expired token fails with ErrInvalidRefreshToken.
func (s *AuthService) Refresh(ctx context.Context, raw string) (TokenPair, error) {
	hash := utils.HashRefreshRaw(raw)
	stored, err := s.tokens.Find(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, err
	}
	if stored.RevokedAt != nil || stored.Expired(time.Now().UTC()) {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	u, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Owner deleted since issuance; the token is dead.
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, err
	}

	access, err := utils.NewAccessToken(s.secret, u.ID, u.Username, u.RoleNames(), s.accessTTLMin)
	if err != nil {
		return TokenPair{}, err
	}
	next, err := utils.NewRefreshToken(s.refreshTTLDays)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.tokens.Replace(ctx, hash, u.ID, utils.HashRefreshRaw(next.Raw), next.Exp); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Another request rotated the token between our validity
			// check and the revoke; only the winner gets a successor.
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, err
	}
	return TokenPair{
		UserID:       u.ID,
		Username:     u.Username,
		AccessToken:  access.Token,
		AccessExp:    access.Exp,
		RefreshToken: next.Raw,
		RefreshExp:   next.Exp,
	}, nil
}

// VerifyPassword exposes credential verification for user-management
// flows outside login.
func (s *AuthService) VerifyPassword(hash, plain string) bool {
	return utils.VerifyPassword(hash, plain)
}

// Logout revokes every active refresh token of the user.
func (s *AuthService) Logout(ctx context.Context, userID uint64) error {
	return s.tokens.RevokeAllForUser(ctx, userID)
}
