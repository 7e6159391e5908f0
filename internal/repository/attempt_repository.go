package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/katalis-id/psikotes-backend/internal/model"
)

// SessionAttemptRow combines participant data with attempt and result details
// for the admin per-session aggregate view.
type SessionAttemptRow struct {
	AttemptID         uuid.UUID           `json:"attempt_id"`
	UserID            int                 `json:"user_id"`
	Name              string              `json:"name"`
	Email             string              `json:"email"`
	TestID            uuid.UUID           `json:"test_id"`
	TestName          string              `json:"test_name"`
	Status            model.AttemptStatus `json:"status"`
	ScaledScore       *float64            `json:"scaled_score"`
	Grade             *string             `json:"grade"`
	StartTime         time.Time           `json:"start_time"`
	ActualEndTime     *time.Time          `json:"actual_end_time"`
	QuestionsAnswered int                 `json:"questions_answered"`
	TotalQuestions    int                 `json:"total_questions"`
}

// AttemptRepository handles attempt data access. Every state-changing write
// re-asserts the expected prior status in its WHERE clause, so a losing
// concurrent writer matches zero rows instead of corrupting state.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

const attemptColumns = `id, user_id, test_id, session_id, attempt_number, status,
	start_time, end_time, actual_end_time, questions_answered, total_questions,
	created_at, updated_at`

func scanAttempt(row rowScanner) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := row.Scan(&a.ID, &a.UserID, &a.TestID, &a.SessionID, &a.AttemptNumber,
		&a.Status, &a.StartTime, &a.EndTime, &a.ActualEndTime,
		&a.QuestionsAnswered, &a.TotalQuestions, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an attempt by its UUID.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE id = $1`, id))
}

// GetNonTerminal retrieves the single non-terminal attempt for a
// (user, test, session) triple, if one exists. NULL session matches NULL.
func (r *AttemptRepository) GetNonTerminal(ctx context.Context, userID int, testID uuid.UUID, sessionID *uuid.UUID) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+`
		 FROM attempts
		 WHERE user_id = $1 AND test_id = $2
		   AND session_id IS NOT DISTINCT FROM $3
		   AND status IN ('started', 'in_progress')`,
		userID, testID, sessionID))
}

// Create inserts a new attempt. The attempt number is assigned monotonically
// per (user, test, session) inside the insert itself.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO attempts
		   (user_id, test_id, session_id, attempt_number, status,
		    start_time, end_time, questions_answered, total_questions)
		 VALUES ($1, $2, $3,
		   (SELECT COALESCE(MAX(attempt_number), 0) + 1
		      FROM attempts
		     WHERE user_id = $1 AND test_id = $2
		       AND session_id IS NOT DISTINCT FROM $3),
		   $4, $5, $6, $7, $8)
		 RETURNING id, attempt_number, created_at, updated_at`,
		a.UserID, a.TestID, a.SessionID, a.Status,
		a.StartTime, a.EndTime, a.QuestionsAnswered, a.TotalQuestions,
	).Scan(&a.ID, &a.AttemptNumber, &a.CreatedAt, &a.UpdatedAt)
}

// MarkExpired flips a still-live attempt to expired (lazy expiry). Returns
// false if the attempt was already terminal, i.e. a concurrent writer won.
func (r *AttemptRepository) MarkExpired(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE attempts
		 SET status = 'expired', actual_end_time = $2, updated_at = $2
		 WHERE id = $1 AND status IN ('started', 'in_progress')`,
		id, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateStatus transitions an attempt from an expected prior status to a new
// one. Returns false when the row no longer holds the expected status.
func (r *AttemptRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.AttemptStatus, now time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE attempts
		 SET status = $3, updated_at = $4
		 WHERE id = $1 AND status = $2`,
		id, from, to, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateQuestionsAnswered writes back the recomputed answered counter. The
// write only lands on a still-live attempt; a row that went terminal since
// it was read is left untouched and reported via the bool.
func (r *AttemptRepository) UpdateQuestionsAnswered(ctx context.Context, id uuid.UUID, count int, now time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE attempts
		 SET questions_answered = $2, updated_at = $3
		 WHERE id = $1 AND status IN ('started', 'in_progress')`,
		id, count, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Finish terminates a still-live attempt with its final status and counters.
// Returns false when the attempt was already terminal.
func (r *AttemptRepository) Finish(ctx context.Context, id uuid.UUID, status model.AttemptStatus, questionsAnswered int, now time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE attempts
		 SET status = $2, questions_answered = $3, actual_end_time = $4, updated_at = $4
		 WHERE id = $1 AND status IN ('started', 'in_progress')`,
		id, status, questionsAnswered, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListByUser retrieves all attempts for a participant, newest first.
func (r *AttemptRepository) ListByUser(ctx context.Context, userID int) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+`
		 FROM attempts
		 WHERE user_id = $1
		 ORDER BY start_time DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, *a)
	}
	return attempts, rows.Err()
}

// ListBySession retrieves the admin aggregate view for one session: every
// attempt joined with its participant and (when present) its result.
func (r *AttemptRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]SessionAttemptRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.user_id, p.name, p.email, a.test_id, t.name,
		        a.status, res.scaled_score, res.grade,
		        a.start_time, a.actual_end_time, a.questions_answered, a.total_questions
		 FROM attempts a
		 JOIN participants p ON a.user_id = p.id
		 JOIN tests t ON a.test_id = t.id
		 LEFT JOIN results res ON res.attempt_id = a.id
		 WHERE a.session_id = $1
		 ORDER BY p.name ASC, a.start_time ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionAttemptRow
	for rows.Next() {
		var row SessionAttemptRow
		if err := rows.Scan(&row.AttemptID, &row.UserID, &row.Name, &row.Email,
			&row.TestID, &row.TestName, &row.Status, &row.ScaledScore, &row.Grade,
			&row.StartTime, &row.ActualEndTime, &row.QuestionsAnswered, &row.TotalQuestions); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
