package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/auth-rbac-service/internal/model"
)

// TokenRepo persists refresh tokens (single 'token_hash' column).
// Rows are append-only apart from revoked_at; rotation inserts a new
// row and revokes the old one in the same transaction.
type TokenRepo struct{ DB *sql.DB }

// NewTokenRepo returns a new TokenRepo bound to the given database.
func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a refresh token hash row for the user.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp)
	return translateError(err)
}

// Find returns the stored refresh token row for the given hash,
// expired or not; validity is the caller's decision. Returns
// ErrNotFound when no row matches.
func (r *TokenRepo) Find(ctx context.Context, tokenHash string) (model.RefreshToken, error) {
	var (
		t       model.RefreshToken
		revoked sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, revoked_at, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &revoked, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return model.RefreshToken{}, ErrNotFound
	}
	if err != nil {
		return model.RefreshToken{}, err
	}
	if revoked.Valid {
		rv := revoked.Time
		t.RevokedAt = &rv
	}
	return t, nil
}

// Replace revokes the old token and stores its successor in one
// transaction. After commit the old token can no longer be used to
// refresh, and no state exists in which both writes are half-applied.
// The revoke UPDATE is the authoritative guard against two holders of
// the same token rotating it concurrently: only the caller whose
// UPDATE actually flips revoked_at gets a successor, any other caller
// finds zero rows and gets ErrNotFound.
func (r *TokenRepo) Replace(ctx context.Context, oldHash string, userID uint64, newHash string, exp time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL",
		oldHash)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		// Already revoked or never stored; the presented token lost the race.
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, newHash, exp); err != nil {
		return translateError(err)
	}
	return tx.Commit()
}

// RevokeAllForUser revokes every active token belonging to the user.
// Used when a user is deleted or force-logged-out.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}
