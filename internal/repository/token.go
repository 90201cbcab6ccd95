package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/zknotes/zknotes-go/internal/model"
)

var ErrTokenNotFound = errors.New("session token not found")

// TokenRepository handles session token persistence operations.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create records a newly issued session token.
func (r *TokenRepository) Create(ctx context.Context, tok model.SessionToken) error {
	query := `INSERT INTO tokens (token, user, tokendate) VALUES (?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, tok.Token, tok.UserID, tok.IssuedAt.UnixMilli())
	return err
}

// GetUserByToken resolves an unexpired token to its owning user. Rows whose
// issuance is older than lifetime are treated as absent even before the
// purge task physically deletes them.
func (r *TokenRepository) GetUserByToken(ctx context.Context, token string, lifetime time.Duration) (*model.User, error) {
	query := `
SELECT u.id, u.name, u.hashwd, u.email, u.registration_key, u.createdate
FROM tokens t
JOIN users u ON u.id = t.user
WHERE t.token = ? AND t.tokendate > ?`

	cutoff := time.Now().Add(-lifetime).UnixMilli()

	user := &model.User{}
	var createdate int64

	err := r.db.QueryRowContext(ctx, query, token, cutoff).Scan(
		&user.ID, &user.Name, &user.HashedPwd, &user.Email, &user.RegistrationKey, &createdate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	user.CreateDate = time.UnixMilli(createdate).UTC()
	return user, nil
}

// Delete removes a single token (logout).
func (r *TokenRepository) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM tokens WHERE token = ?`

	_, err := r.db.ExecContext(ctx, query, token)
	return err
}

// PurgeExpired deletes every token issued more than lifetime ago and
// returns the number of rows removed. Running it again with no new
// expirations deletes zero rows.
func (r *TokenRepository) PurgeExpired(ctx context.Context, lifetime time.Duration) (int64, error) {
	query := `DELETE FROM tokens WHERE tokendate < ?`

	cutoff := time.Now().Add(-lifetime).UnixMilli()

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
