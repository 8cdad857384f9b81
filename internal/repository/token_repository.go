package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Andressalasf/API-Store/internal/model"
)

// TokenRepo persists refresh tokens.  The token column carries a UNIQUE
// constraint; Rotate relies on it as the enforcement mechanism of last
// resort against double-spending a refresh token.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a refresh token row with its absolute expiry.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, token string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES (?,?,?)",
		userID, token, expiresAt)
	return err
}

// FindByToken returns the stored row for a token string, ErrTokenNotFound
// when absent.  Expiry is NOT checked here; the handler distinguishes an
// expired stored token from a missing one.
func (r *TokenRepo) FindByToken(ctx context.Context, token string) (model.RefreshToken, error) {
	var t model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token, expires_at FROM refresh_tokens WHERE token=? LIMIT 1",
		token).Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RefreshToken{}, ErrTokenNotFound
	}
	return t, err
}

// DeleteByToken removes a token row.  Deleting an absent token is not an
// error, which makes logout idempotent.
func (r *TokenRepo) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE token=?", token)
	return err
}

// Rotate atomically replaces oldToken with newToken inside one
// transaction.  The delete is conditional on the old row still existing:
// when two concurrent refresh calls present the same token, only the one
// whose DELETE reports an affected row gets to insert the replacement;
// the other observes zero rows and fails with ErrTokenNotFound.
func (r *TokenRepo) Rotate(ctx context.Context, oldToken string, userID uint64, newToken string, expiresAt time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE token=?", oldToken)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenNotFound
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES (?,?,?)",
		userID, newToken, expiresAt); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteExpired removes rows whose expiry has passed and reports how many
// were deleted.  Correctness never depends on this running; it exists for
// storage hygiene.
func (r *TokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByUser removes every token belonging to a user.  Called when the
// user record itself is deleted so no orphaned sessions survive.
func (r *TokenRepo) DeleteByUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE user_id=?", userID)
	return err
}
