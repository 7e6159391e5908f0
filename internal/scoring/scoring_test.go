package scoring

import (
	"testing"

	"github.com/katalis-id/psikotes-backend/internal/model"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestScoreObjective(t *testing.T) {
	question := &model.Question{
		QuestionType:  model.QuestionTypeMultipleChoice,
		CorrectAnswer: "b",
		Options: []model.QuestionOption{
			{Key: "a", Label: "Pilihan A"},
			{Key: "b", Label: "Pilihan B"},
			{Key: "c", Label: "Pilihan C"},
		},
	}

	tests := []struct {
		name        string
		answer      *string
		wantScore   float64
		wantCorrect bool
	}{
		{"correct option", strPtr("b"), 1, true},
		{"wrong option", strPtr("a"), 0, false},
		{"empty answer", strPtr(""), 0, false},
		{"nil answer", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(ScoreInput{
				Question:   question,
				ModuleType: model.ModuleTypeCognitive,
				Answer:     tt.answer,
			})
			if got.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", got.Score, tt.wantScore)
			}
			if got.IsCorrect == nil {
				t.Fatal("IsCorrect = nil, want non-nil for objective question")
			}
			if *got.IsCorrect != tt.wantCorrect {
				t.Errorf("IsCorrect = %v, want %v", *got.IsCorrect, tt.wantCorrect)
			}
		})
	}
}

func TestScoreObjectiveOptionOverride(t *testing.T) {
	question := &model.Question{
		QuestionType:  model.QuestionTypeMultipleChoice,
		CorrectAnswer: "a",
		Options: []model.QuestionOption{
			{Key: "a", Label: "Pilihan A", Score: floatPtr(2.5)},
			{Key: "b", Label: "Pilihan B"},
		},
	}

	got := Score(ScoreInput{
		Question:   question,
		ModuleType: model.ModuleTypeCognitive,
		Answer:     strPtr("a"),
	})
	if got.Score != 2.5 {
		t.Errorf("Score = %v, want 2.5 from the option override", got.Score)
	}
}

func TestScoreTrueFalse(t *testing.T) {
	question := &model.Question{
		QuestionType:  model.QuestionTypeTrueFalse,
		CorrectAnswer: "true",
	}

	got := Score(ScoreInput{
		Question:   question,
		ModuleType: model.ModuleTypeCognitive,
		Answer:     strPtr("true"),
	})
	if got.Score != 1 || got.IsCorrect == nil || !*got.IsCorrect {
		t.Errorf("Score(%q) = %+v, want score 1 correct", "true", got)
	}

	got = Score(ScoreInput{
		Question:   question,
		ModuleType: model.ModuleTypeCognitive,
		Answer:     strPtr("false"),
	})
	if got.Score != 0 || got.IsCorrect == nil || *got.IsCorrect {
		t.Errorf("Score(%q) = %+v, want score 0 incorrect", "false", got)
	}
}

func TestScoreRating(t *testing.T) {
	question := &model.Question{
		QuestionType: model.QuestionTypeRatingScale,
		ScoringKey: model.ScoringKey{
			Kind:  model.ScoringKeyTrait,
			Trait: "dominance",
		},
	}

	tests := []struct {
		name      string
		answer    *string
		wantScore float64
		wantTrait string
	}{
		{"valid rating", strPtr("4"), 4, "dominance"},
		{"minimum rating", strPtr("1"), 1, "dominance"},
		{"maximum rating", strPtr("5"), 5, "dominance"},
		{"out of range", strPtr("9"), 0, "dominance"},
		{"not a number", strPtr("abc"), 0, "dominance"},
		{"nil answer", nil, 0, "dominance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(ScoreInput{
				Question:   question,
				ModuleType: model.ModuleTypeDISC,
				Answer:     tt.answer,
			})
			if got.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", got.Score, tt.wantScore)
			}
			if got.IsCorrect != nil {
				t.Error("IsCorrect should be nil for rating answers")
			}
			if got.Trait != tt.wantTrait {
				t.Errorf("Trait = %q, want %q", got.Trait, tt.wantTrait)
			}
		})
	}
}

func TestScorePersonalityModuleForcesRating(t *testing.T) {
	// A personality module treats every answer as a rating even when the
	// question row was typed multiple_choice by the authoring side.
	question := &model.Question{
		QuestionType: model.QuestionTypeMultipleChoice,
		ScoringKey: model.ScoringKey{
			Kind:  model.ScoringKeyTrait,
			Trait: "openness",
		},
	}

	got := Score(ScoreInput{
		Question:   question,
		ModuleType: model.ModuleTypeBigFive,
		Answer:     strPtr("3"),
	})
	if got.Score != 3 || got.Trait != "openness" || got.IsCorrect != nil {
		t.Errorf("Score = %+v, want rating 3 on trait openness with nil IsCorrect", got)
	}
}

func TestScoreOpenWithExactKey(t *testing.T) {
	question := &model.Question{
		QuestionType: model.QuestionTypeText,
		ScoringKey: model.ScoringKey{
			Kind:     model.ScoringKeyExact,
			Expected: map[string]float64{"jakarta": 2, "bandung": 0},
		},
	}

	tests := []struct {
		name        string
		answer      string
		wantScore   float64
		wantCorrect bool
	}{
		{"matching positive", "jakarta", 2, true},
		{"matching zero", "bandung", 0, false},
		{"no match", "surabaya", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(ScoreInput{
				Question:   question,
				ModuleType: model.ModuleTypeCognitive,
				Answer:     strPtr(tt.answer),
			})
			if got.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", got.Score, tt.wantScore)
			}
			if got.IsCorrect == nil || *got.IsCorrect != tt.wantCorrect {
				t.Errorf("IsCorrect = %v, want %v", got.IsCorrect, tt.wantCorrect)
			}
		})
	}
}

func TestScoreOpenWithoutKey(t *testing.T) {
	question := &model.Question{QuestionType: model.QuestionTypeText}

	got := Score(ScoreInput{
		Question:   question,
		ModuleType: model.ModuleTypeCognitive,
		Answer:     strPtr("jawaban bebas"),
	})
	if got.Score != 1 {
		t.Errorf("Score = %v, want 1 credit for any answered open response", got.Score)
	}
	if got.IsCorrect != nil {
		t.Error("IsCorrect should be nil without an exact-match key")
	}

	got = Score(ScoreInput{
		Question:   question,
		ModuleType: model.ModuleTypeCognitive,
		Answer:     nil,
	})
	if got.Score != 0 {
		t.Errorf("Score = %v, want 0 for an empty response", got.Score)
	}
}

func TestScoreSequenceExactMatch(t *testing.T) {
	question := &model.Question{
		QuestionType: model.QuestionTypeSequence,
		ScoringKey: model.ScoringKey{
			Kind:     model.ScoringKeyExact,
			Expected: map[string]float64{"a,b,c": 3},
		},
	}

	got := Score(ScoreInput{
		Question:   question,
		ModuleType: model.ModuleTypeCognitive,
		AnswerData: []byte(`{"order":["a","b","c"]}`),
	})
	if got.Score != 3 || got.IsCorrect == nil || !*got.IsCorrect {
		t.Errorf("Score = %+v, want 3 correct for the matching order", got)
	}

	got = Score(ScoreInput{
		Question:   question,
		ModuleType: model.ModuleTypeCognitive,
		AnswerData: []byte(`{"order":["c","b","a"]}`),
	})
	if got.Score != 0 || got.IsCorrect == nil || *got.IsCorrect {
		t.Errorf("Score = %+v, want 0 incorrect for a wrong order", got)
	}
}
