package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/katalis-id/psikotes-backend/internal/model"
)

// ResultRepository handles result persistence. One row per attempt; recompute
// overwrites in place.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Upsert writes a result keyed on its attempt_id.
func (r *ResultRepository) Upsert(ctx context.Context, res *model.Result) error {
	traitsJSON, err := json.Marshal(res.Traits)
	if err != nil {
		return fmt.Errorf("marshal traits: %w", err)
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO results
		   (attempt_id, user_id, test_id, raw_score, scaled_score, percentile,
		    grade, is_passed, traits, completion_percentage, description,
		    recommendation, calculated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (attempt_id) DO UPDATE
		 SET raw_score = EXCLUDED.raw_score,
		     scaled_score = EXCLUDED.scaled_score,
		     percentile = EXCLUDED.percentile,
		     grade = EXCLUDED.grade,
		     is_passed = EXCLUDED.is_passed,
		     traits = EXCLUDED.traits,
		     completion_percentage = EXCLUDED.completion_percentage,
		     description = EXCLUDED.description,
		     recommendation = EXCLUDED.recommendation,
		     calculated_at = EXCLUDED.calculated_at
		 RETURNING id`,
		res.AttemptID, res.UserID, res.TestID, res.RawScore, res.ScaledScore,
		res.Percentile, res.Grade, res.IsPassed, traitsJSON,
		res.CompletionPercentage, res.Description, res.Recommendation,
		res.CalculatedAt,
	).Scan(&res.ID)
}

// GetByAttempt retrieves the result of an attempt.
func (r *ResultRepository) GetByAttempt(ctx context.Context, attemptID uuid.UUID) (*model.Result, error) {
	res := &model.Result{}
	var traitsRaw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, attempt_id, user_id, test_id, raw_score, scaled_score,
		        percentile, grade, is_passed, traits, completion_percentage,
		        description, recommendation, calculated_at
		 FROM results
		 WHERE attempt_id = $1`, attemptID,
	).Scan(&res.ID, &res.AttemptID, &res.UserID, &res.TestID, &res.RawScore,
		&res.ScaledScore, &res.Percentile, &res.Grade, &res.IsPassed, &traitsRaw,
		&res.CompletionPercentage, &res.Description, &res.Recommendation,
		&res.CalculatedAt)
	if err != nil {
		return nil, err
	}

	if len(traitsRaw) > 0 {
		if err := json.Unmarshal(traitsRaw, &res.Traits); err != nil {
			return nil, fmt.Errorf("result %s: invalid traits: %w", res.ID, err)
		}
	}
	return res, nil
}
