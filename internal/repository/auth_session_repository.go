package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuthSessionRepository records login sessions for auditing. Live device
// enforcement happens in Redis; these rows only feed the scheduler's
// housekeeping job.
type AuthSessionRepository struct {
	pool *pgxpool.Pool
}

// NewAuthSessionRepository creates a new AuthSessionRepository.
func NewAuthSessionRepository(pool *pgxpool.Pool) *AuthSessionRepository {
	return &AuthSessionRepository{pool: pool}
}

// Record inserts a login session row.
func (r *AuthSessionRepository) Record(ctx context.Context, userID int, tokenType, jti string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO auth_sessions (user_id, token_type, jti, expires_at)
		 VALUES ($1, $2, $3, $4)`,
		userID, tokenType, jti, expiresAt)
	return err
}

// DeleteExpired removes sessions past their expiry. Returns the number of
// rows cleaned up.
func (r *AuthSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM auth_sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
