package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/katalis-id/psikotes-backend/internal/model"
)

// AnswerRepository handles answer persistence. Rows are upserted on their
// (user, question, attempt) identity, last write wins, and never deleted.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

const answerColumns = `id, user_id, question_id, attempt_id, answer, answer_data,
	score, is_correct, is_draft, confidence_level, time_taken_seconds,
	answered_at, updated_at`

func scanAnswer(row rowScanner) (*model.Answer, error) {
	a := &model.Answer{}
	err := row.Scan(&a.ID, &a.UserID, &a.QuestionID, &a.AttemptID,
		&a.Answer, &a.AnswerData, &a.Score, &a.IsCorrect, &a.IsDraft,
		&a.ConfidenceLevel, &a.TimeTakenSeconds, &a.AnsweredAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Upsert creates the answer row or overwrites its mutable fields in place.
// No merge of partial fields: the submitted payload replaces what was there.
func (r *AnswerRepository) Upsert(ctx context.Context, a *model.Answer) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO answers
		   (user_id, question_id, attempt_id, answer, answer_data,
		    score, is_correct, is_draft, confidence_level, time_taken_seconds,
		    answered_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		 ON CONFLICT (user_id, question_id, attempt_id) DO UPDATE
		 SET answer = EXCLUDED.answer,
		     answer_data = EXCLUDED.answer_data,
		     score = EXCLUDED.score,
		     is_correct = EXCLUDED.is_correct,
		     is_draft = EXCLUDED.is_draft,
		     confidence_level = EXCLUDED.confidence_level,
		     time_taken_seconds = EXCLUDED.time_taken_seconds,
		     updated_at = EXCLUDED.updated_at
		 RETURNING id, answered_at`,
		a.UserID, a.QuestionID, a.AttemptID, a.Answer, a.AnswerData,
		a.Score, a.IsCorrect, a.IsDraft, a.ConfidenceLevel, a.TimeTakenSeconds,
		time.Now(),
	).Scan(&a.ID, &a.AnsweredAt)
}

// Get retrieves the single answer for a (user, question, attempt) key.
func (r *AnswerRepository) Get(ctx context.Context, userID int, questionID, attemptID uuid.UUID) (*model.Answer, error) {
	return scanAnswer(r.pool.QueryRow(ctx,
		`SELECT `+answerColumns+`
		 FROM answers
		 WHERE user_id = $1 AND question_id = $2 AND attempt_id = $3`,
		userID, questionID, attemptID))
}

// ListByAttempt retrieves all answers of an attempt in question order.
func (r *AnswerRepository) ListByAttempt(ctx context.Context, attemptID uuid.UUID) ([]model.Answer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+answerColumns+`
		 FROM answers a
		 WHERE attempt_id = $1
		 ORDER BY (SELECT q.sequence FROM questions q WHERE q.id = a.question_id)`,
		attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		answers = append(answers, *a)
	}
	return answers, rows.Err()
}

// CountAnswered counts the attempt's rows that carry any response content.
// Used to recompute the attempt's questions_answered counter.
func (r *AnswerRepository) CountAnswered(ctx context.Context, attemptID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM answers
		 WHERE attempt_id = $1
		   AND ((answer IS NOT NULL AND answer <> '')
		     OR (answer_data IS NOT NULL AND answer_data::text <> 'null'))`,
		attemptID).Scan(&count)
	return count, err
}
