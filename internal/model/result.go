package model

import (
	"time"

	"github.com/google/uuid"
)

// TraitScore is one entry of a result's trait profile. Every entry of the
// category's taxonomy is always emitted, even with zero observed ratings, so
// downstream visualizations receive a complete, stable shape.
type TraitScore struct {
	Trait       string  `json:"trait"`
	Score       float64 `json:"score"`
	RatingCount int     `json:"rating_count"`
}

// Result is the derived outcome of one attempt. Unique per attempt_id;
// overwritten in place on recompute.
type Result struct {
	ID          uuid.UUID `json:"id"`
	AttemptID   uuid.UUID `json:"attempt_id"`
	UserID      int       `json:"user_id"`
	TestID      uuid.UUID `json:"test_id"`
	RawScore    float64   `json:"raw_score"`
	ScaledScore float64   `json:"scaled_score"`
	// Percentile, Grade, and IsPassed are null for personality-class tests:
	// pass/fail is not meaningful there.
	Percentile           *float64     `json:"percentile"`
	Grade                *string      `json:"grade"`
	IsPassed             *bool        `json:"is_passed"`
	Traits               []TraitScore `json:"traits"`
	CompletionPercentage float64      `json:"completion_percentage"`
	Description          string       `json:"description"`
	Recommendation       string       `json:"recommendation,omitempty"`
	CalculatedAt         time.Time    `json:"calculated_at"`
}
