package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported question formats.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeText           QuestionType = "text"
	QuestionTypeRatingScale    QuestionType = "rating_scale"
	QuestionTypeDrawing        QuestionType = "drawing"
	QuestionTypeSequence       QuestionType = "sequence"
	QuestionTypeMatrix         QuestionType = "matrix"
)

// Valid reports whether the question type is one of the supported formats.
func (q QuestionType) Valid() bool {
	switch q {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeText,
		QuestionTypeRatingScale, QuestionTypeDrawing, QuestionTypeSequence,
		QuestionTypeMatrix:
		return true
	}
	return false
}

// QuestionOption is a single selectable option. Score overrides the default
// 1-point credit for a correct pick when present.
type QuestionOption struct {
	Key   string   `json:"key"`
	Label string   `json:"label"`
	Score *float64 `json:"score,omitempty"`
}

// Question represents a single test question. Owned by the authoring side;
// read-only here.
type Question struct {
	ID            uuid.UUID        `json:"id"`
	TestID        uuid.UUID        `json:"test_id"`
	QuestionText  string           `json:"question_text"`
	QuestionType  QuestionType     `json:"question_type"`
	Options       []QuestionOption `json:"options,omitempty"`
	CorrectAnswer string           `json:"correct_answer,omitempty"`
	ScoringKey    ScoringKey       `json:"scoring_key"`
	Sequence      int              `json:"sequence"`
}

// OptionByKey returns the option with the given key, or nil.
func (q *Question) OptionByKey(key string) *QuestionOption {
	for i := range q.Options {
		if q.Options[i].Key == key {
			return &q.Options[i]
		}
	}
	return nil
}

// ScoringKeyKind discriminates the normalized scoring key variants.
type ScoringKeyKind string

const (
	// ScoringKeyNone means no key: objective types fall back to the
	// correct_answer column, open types are credited when answered.
	ScoringKeyNone ScoringKeyKind = "none"
	// ScoringKeyTrait attributes a 1–5 rating to a named trait bucket.
	ScoringKeyTrait ScoringKeyKind = "trait"
	// ScoringKeyExact maps expected submitted values to explicit scores.
	ScoringKeyExact ScoringKeyKind = "exact"
)

// ScoringKey is the normalized, discriminated form of the per-question
// scoring key. Raw rows historically stored either {"trait": "..."} or a
// bare value→score map; ParseScoringKey folds both shapes into this one
// representation at ingestion time and rejects anything else.
type ScoringKey struct {
	Kind     ScoringKeyKind     `json:"kind"`
	Trait    string             `json:"trait,omitempty"`
	Expected map[string]float64 `json:"expected,omitempty"`
}

// ParseScoringKey normalizes a raw scoring_key JSON document. A null or empty
// document yields the none variant. An object carrying a "trait" string is
// the trait variant; any other flat string→number object is treated as an
// exact-match map. Unknown shapes are an error so malformed authoring data
// surfaces at read time instead of mis-scoring silently.
func ParseScoringKey(raw []byte) (ScoringKey, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return ScoringKey{Kind: ScoringKeyNone}, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ScoringKey{}, fmt.Errorf("scoring_key is not a JSON object: %w", err)
	}
	if len(probe) == 0 {
		return ScoringKey{Kind: ScoringKeyNone}, nil
	}

	if traitRaw, ok := probe["trait"]; ok {
		var trait string
		if err := json.Unmarshal(traitRaw, &trait); err != nil || trait == "" {
			return ScoringKey{}, fmt.Errorf("scoring_key trait must be a non-empty string")
		}
		return ScoringKey{Kind: ScoringKeyTrait, Trait: trait}, nil
	}

	expected := make(map[string]float64, len(probe))
	for k, v := range probe {
		var score float64
		if err := json.Unmarshal(v, &score); err != nil {
			return ScoringKey{}, fmt.Errorf("scoring_key value for %q is not numeric", k)
		}
		expected[k] = score
	}
	return ScoringKey{Kind: ScoringKeyExact, Expected: expected}, nil
}
