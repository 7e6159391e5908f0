package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/katalis-id/psikotes-backend/internal/model"
)

// QuestionRepository handles read access to question metadata. The raw
// scoring_key document is normalized into the discriminated representation
// at scan time, so malformed authoring data fails loudly here.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByTest retrieves all questions for a test, ordered by sequence.
func (r *QuestionRepository) ListByTest(ctx context.Context, testID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, question_text, question_type, options, correct_answer, scoring_key, sequence
		 FROM questions
		 WHERE test_id = $1
		 ORDER BY sequence`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// GetByID retrieves a single question.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, test_id, question_text, question_type, options, correct_answer, scoring_key, sequence
		 FROM questions
		 WHERE id = $1`, id,
	)
	return scanQuestion(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (*model.Question, error) {
	var (
		q          model.Question
		optionsRaw []byte
		keyRaw     []byte
	)
	if err := row.Scan(&q.ID, &q.TestID, &q.QuestionText, &q.QuestionType,
		&optionsRaw, &q.CorrectAnswer, &keyRaw, &q.Sequence); err != nil {
		return nil, err
	}

	if len(optionsRaw) > 0 {
		if err := json.Unmarshal(optionsRaw, &q.Options); err != nil {
			return nil, fmt.Errorf("question %s: invalid options: %w", q.ID, err)
		}
	}

	key, err := model.ParseScoringKey(keyRaw)
	if err != nil {
		return nil, fmt.Errorf("question %s: %w", q.ID, err)
	}
	q.ScoringKey = key

	return &q, nil
}
