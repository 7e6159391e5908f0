package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/katalis-id/psikotes-backend/internal/model"
)

// TestRepository handles read access to test metadata. Tests are authored by
// an external collaborator; this core never writes them.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

// GetByID retrieves a test by its UUID.
func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t := &model.Test{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, module_type, category, question_type,
		        time_limit_minutes, total_questions, passing_score, created_at
		 FROM tests
		 WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.ModuleType, &t.Category, &t.QuestionType,
		&t.TimeLimitMinutes, &t.TotalQuestions, &t.PassingScore, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}
