// Package scoring contains the pure scoring rules: per-question grading,
// trait aggregation, grade banding, and the deterministic result narrative.
// Nothing here touches storage or the clock.
package scoring

import (
	"strconv"

	"github.com/katalis-id/psikotes-backend/internal/model"
)

// ScoreInput carries everything needed to grade one submitted answer.
type ScoreInput struct {
	Question   *model.Question
	ModuleType model.ModuleType
	Answer     *string
	AnswerData []byte
}

// ScoreResult is the outcome of grading a single answer. IsCorrect is nil for
// every non-objective response: rating scales have no right answer, and open
// types (text/drawing/sequence/matrix) are only judged when an explicit
// exact-match key exists.
type ScoreResult struct {
	Score     float64
	IsCorrect *bool
	// Trait is set for rating-scale answers carrying a trait scoring key;
	// the result aggregator buckets the rating under this name.
	Trait string
}

// Score grades one answer against its question. Pure function: same inputs,
// same output.
func Score(in ScoreInput) ScoreResult {
	q := in.Question

	// Personality-class modules treat every rating as a trait observation,
	// regardless of how the question row was typed.
	if q.QuestionType == model.QuestionTypeRatingScale || in.ModuleType.IsPersonality() {
		return scoreRating(in)
	}

	switch q.QuestionType {
	case model.QuestionTypeMultipleChoice, model.QuestionTypeTrueFalse:
		return scoreObjective(in)
	default:
		return scoreOpen(in)
	}
}

// scoreObjective handles multiple_choice and true_false: exact match against
// correct_answer, with an optional per-option score overriding the 1-point
// credit.
func scoreObjective(in ScoreInput) ScoreResult {
	q := in.Question

	submitted := ""
	if in.Answer != nil {
		submitted = *in.Answer
	}

	correct := submitted != "" && submitted == q.CorrectAnswer
	score := 0.0
	if correct {
		score = 1.0
		if opt := q.OptionByKey(submitted); opt != nil && opt.Score != nil {
			score = *opt.Score
		}
	}
	return ScoreResult{Score: score, IsCorrect: &correct}
}

// scoreRating attributes a 1–5 rating to the question's trait bucket. The
// rating itself is stored as the score; it is consumed only by the trait
// profile, never by pass/fail logic.
func scoreRating(in ScoreInput) ScoreResult {
	rating := 0.0
	if in.Answer != nil {
		if v, err := strconv.ParseFloat(*in.Answer, 64); err == nil && v >= 1 && v <= 5 {
			rating = v
		}
	}

	trait := ""
	if in.Question.ScoringKey.Kind == model.ScoringKeyTrait {
		trait = in.Question.ScoringKey.Trait
	}
	return ScoreResult{Score: rating, IsCorrect: nil, Trait: trait}
}

// scoreOpen handles text, drawing, sequence, and matrix. With an explicit
// exact-match key, the canonical submitted value is looked up in the expected
// map; otherwise any answered response is credited one point. This is a
// conservative fallback, not exhaustive grading.
func scoreOpen(in ScoreInput) ScoreResult {
	q := in.Question

	value := model.CanonicalValue(q, in.Answer, in.AnswerData)
	if value == "" {
		return ScoreResult{Score: 0}
	}

	if q.ScoringKey.Kind == model.ScoringKeyExact {
		score, ok := q.ScoringKey.Expected[value]
		correct := ok && score > 0
		if !ok {
			score = 0
		}
		return ScoreResult{Score: score, IsCorrect: &correct}
	}

	// Answered ⇒ credited.
	return ScoreResult{Score: 1, IsCorrect: nil}
}
