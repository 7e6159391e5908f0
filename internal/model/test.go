package model

import (
	"time"

	"github.com/google/uuid"
)

// ModuleType classifies a test by its scoring semantics. Cognitive tests have
// objectively right answers; the personality classes aggregate trait ratings.
type ModuleType string

const (
	ModuleTypeCognitive ModuleType = "cognitive"
	ModuleTypeMBTI      ModuleType = "mbti"
	ModuleTypeBigFive   ModuleType = "big_five"
	ModuleTypeDISC      ModuleType = "disc"
	ModuleTypeEPPS      ModuleType = "epps"
)

// IsPersonality reports whether the module type belongs to the personality
// class (no right answers, trait aggregation only).
func (m ModuleType) IsPersonality() bool {
	switch m {
	case ModuleTypeMBTI, ModuleTypeBigFive, ModuleTypeDISC, ModuleTypeEPPS:
		return true
	}
	return false
}

// DefaultPassingScore is applied when a test row carries no passing score.
const DefaultPassingScore = 60

// Test represents a test definition. Owned by the authoring collaborator;
// read-only for this core and immutable during an attempt.
type Test struct {
	ID               uuid.UUID    `json:"id"`
	Name             string       `json:"name"`
	ModuleType       ModuleType   `json:"module_type"`
	Category         string       `json:"category"`
	QuestionType     QuestionType `json:"question_type"`
	TimeLimitMinutes int          `json:"time_limit_minutes"`
	TotalQuestions   int          `json:"total_questions"`
	PassingScore     float64      `json:"passing_score"`
	CreatedAt        time.Time    `json:"created_at"`
}

// TimeLimit returns the test's wall-clock time limit as a duration.
func (t *Test) TimeLimit() time.Duration {
	return time.Duration(t.TimeLimitMinutes) * time.Minute
}

// IsPersonality reports whether results for this test carry a trait profile
// instead of a grade. A rating_scale default question type also counts even
// when the module_type was left cognitive by the authoring side.
func (t *Test) IsPersonality() bool {
	return t.ModuleType.IsPersonality() || t.QuestionType == QuestionTypeRatingScale
}
