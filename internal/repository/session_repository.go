package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/katalis-id/psikotes-backend/internal/model"
)

// SessionRepository handles test session data access, including the
// scheduler's guarded status flips. Each flip re-asserts the prior status in
// its WHERE clause to avoid clobbering a concurrent transition.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, code, name, status, start_time, end_time, auto_expire, created_at`

func scanSession(row rowScanner) (*model.TestSession, error) {
	s := &model.TestSession{}
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.Status, &s.StartTime,
		&s.EndTime, &s.AutoExpire, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByCode retrieves a session by its join code.
func (r *SessionRepository) GetByCode(ctx context.Context, code string) (*model.TestSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions WHERE code = $1`, code))
}

// GetByID retrieves a session by its UUID.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions WHERE id = $1`, id))
}

// HasModule reports whether the test is a module of the session.
func (r *SessionRepository) HasModule(ctx context.Context, sessionID, testID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM session_modules
		   WHERE session_id = $1 AND test_id = $2
		 )`, sessionID, testID).Scan(&exists)
	return exists, err
}

// ExpireDue flips every active auto-expiring session whose window has passed.
// Sessions with auto_expire=false are left untouched. Returns the number of
// sessions transitioned.
func (r *SessionRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE test_sessions
		 SET status = 'expired'
		 WHERE status = 'active' AND auto_expire = true AND end_time < $1`,
		now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ActivateDue flips every draft session whose window has opened. Returns the
// number of sessions transitioned.
func (r *SessionRepository) ActivateDue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE test_sessions
		 SET status = 'active'
		 WHERE status = 'draft' AND start_time < $1 AND end_time > $1`,
		now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
