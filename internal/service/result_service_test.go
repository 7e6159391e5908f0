package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/katalis-id/psikotes-backend/internal/model"
)

func strPtr(s string) *string { return &s }

func cognitiveFixture() (*model.Test, map[uuid.UUID]*model.Question, *model.Attempt) {
	testID := uuid.New()
	test := &model.Test{
		ID:             testID,
		ModuleType:     model.ModuleTypeCognitive,
		QuestionType:   model.QuestionTypeMultipleChoice,
		TotalQuestions: 4,
		PassingScore:   60,
	}

	questions := make(map[uuid.UUID]*model.Question)
	for i := 0; i < 4; i++ {
		q := &model.Question{
			ID:            uuid.New(),
			TestID:        testID,
			QuestionType:  model.QuestionTypeMultipleChoice,
			CorrectAnswer: "a",
			Options: []model.QuestionOption{
				{Key: "a", Label: "Pilihan A"},
				{Key: "b", Label: "Pilihan B"},
			},
			Sequence: i + 1,
		}
		questions[q.ID] = q
	}

	attempt := &model.Attempt{
		ID:             uuid.New(),
		UserID:         7,
		TestID:         testID,
		TotalQuestions: 4,
	}
	return test, questions, attempt
}

func questionIDs(questions map[uuid.UUID]*model.Question) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(questions))
	for id := range questions {
		ids = append(ids, id)
	}
	return ids
}

func TestBuildResultCognitive(t *testing.T) {
	test, questions, attempt := cognitiveFixture()
	ids := questionIDs(questions)

	// Three correct, one wrong.
	answers := []model.Answer{
		{ID: uuid.New(), QuestionID: ids[0], AttemptID: attempt.ID, Answer: strPtr("a")},
		{ID: uuid.New(), QuestionID: ids[1], AttemptID: attempt.ID, Answer: strPtr("a")},
		{ID: uuid.New(), QuestionID: ids[2], AttemptID: attempt.ID, Answer: strPtr("a")},
		{ID: uuid.New(), QuestionID: ids[3], AttemptID: attempt.ID, Answer: strPtr("b")},
	}

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	result, err := buildResult(test, questions, answers, attempt, now)
	if err != nil {
		t.Fatalf("buildResult() error = %v", err)
	}

	if result.RawScore != 3 {
		t.Errorf("RawScore = %v, want 3", result.RawScore)
	}
	if result.ScaledScore != 75 {
		t.Errorf("ScaledScore = %v, want 75", result.ScaledScore)
	}
	if result.Grade == nil || *result.Grade != "C" {
		t.Errorf("Grade = %v, want C", result.Grade)
	}
	if result.IsPassed == nil || !*result.IsPassed {
		t.Errorf("IsPassed = %v, want true", result.IsPassed)
	}
	if result.Percentile == nil || *result.Percentile != 75 {
		t.Errorf("Percentile = %v, want 75", result.Percentile)
	}
	if result.CompletionPercentage != 100 {
		t.Errorf("CompletionPercentage = %v, want 100", result.CompletionPercentage)
	}
	if len(result.Traits) != 0 {
		t.Errorf("Traits = %v, want empty for a cognitive test", result.Traits)
	}
	if result.Description == "" {
		t.Error("Description must not be empty")
	}
}

func TestBuildResultDraftsAreUnscored(t *testing.T) {
	test, questions, attempt := cognitiveFixture()
	ids := questionIDs(questions)

	answers := []model.Answer{
		{ID: uuid.New(), QuestionID: ids[0], AttemptID: attempt.ID, Answer: strPtr("a")},
		// A correct draft: counts toward completion, never toward the score.
		{ID: uuid.New(), QuestionID: ids[1], AttemptID: attempt.ID, Answer: strPtr("a"), IsDraft: true},
	}

	result, err := buildResult(test, questions, answers, attempt, time.Now())
	if err != nil {
		t.Fatalf("buildResult() error = %v", err)
	}

	if result.RawScore != 1 {
		t.Errorf("RawScore = %v, want 1 (draft unscored)", result.RawScore)
	}
	if result.CompletionPercentage != 50 {
		t.Errorf("CompletionPercentage = %v, want 50 (draft counts as answered)", result.CompletionPercentage)
	}
}

func TestBuildResultPersonality(t *testing.T) {
	testID := uuid.New()
	test := &model.Test{
		ID:             testID,
		ModuleType:     model.ModuleTypeDISC,
		QuestionType:   model.QuestionTypeRatingScale,
		TotalQuestions: 2,
	}

	q1 := &model.Question{
		ID: uuid.New(), TestID: testID, QuestionType: model.QuestionTypeRatingScale,
		ScoringKey: model.ScoringKey{Kind: model.ScoringKeyTrait, Trait: "dominance"},
	}
	q2 := &model.Question{
		ID: uuid.New(), TestID: testID, QuestionType: model.QuestionTypeRatingScale,
		ScoringKey: model.ScoringKey{Kind: model.ScoringKeyTrait, Trait: "influence"},
	}
	questions := map[uuid.UUID]*model.Question{q1.ID: q1, q2.ID: q2}

	attempt := &model.Attempt{ID: uuid.New(), UserID: 7, TestID: testID, TotalQuestions: 2}
	answers := []model.Answer{
		{ID: uuid.New(), QuestionID: q1.ID, AttemptID: attempt.ID, Answer: strPtr("5")},
		{ID: uuid.New(), QuestionID: q2.ID, AttemptID: attempt.ID, Answer: strPtr("2")},
	}

	result, err := buildResult(test, questions, answers, attempt, time.Now())
	if err != nil {
		t.Fatalf("buildResult() error = %v", err)
	}

	// Pass/fail semantics do not apply.
	if result.Grade != nil || result.Percentile != nil || result.IsPassed != nil {
		t.Errorf("grade/percentile/is_passed = %v/%v/%v, want all nil",
			result.Grade, result.Percentile, result.IsPassed)
	}
	if result.ScaledScore != 100 {
		t.Errorf("ScaledScore = %v, want the completion percentage 100", result.ScaledScore)
	}
	if len(result.Traits) != 4 {
		t.Fatalf("Traits has %d entries, want the full DISC taxonomy of 4", len(result.Traits))
	}

	byTrait := make(map[string]model.TraitScore)
	for _, ts := range result.Traits {
		byTrait[ts.Trait] = ts
	}
	if byTrait["dominance"].Score != 100 {
		t.Errorf("dominance = %v, want 100", byTrait["dominance"].Score)
	}
	if byTrait["influence"].Score != 25 {
		t.Errorf("influence = %v, want 25", byTrait["influence"].Score)
	}
	if byTrait["steadiness"].RatingCount != 0 {
		t.Errorf("steadiness count = %d, want 0", byTrait["steadiness"].RatingCount)
	}
}

func TestBuildResultIdempotent(t *testing.T) {
	test, questions, attempt := cognitiveFixture()
	ids := questionIDs(questions)

	answers := []model.Answer{
		{ID: uuid.New(), QuestionID: ids[0], AttemptID: attempt.ID, Answer: strPtr("a")},
		{ID: uuid.New(), QuestionID: ids[1], AttemptID: attempt.ID, Answer: strPtr("b")},
	}

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	first, err := buildResult(test, questions, answers, attempt, now)
	if err != nil {
		t.Fatalf("buildResult() error = %v", err)
	}
	second, err := buildResult(test, questions, answers, attempt, now)
	if err != nil {
		t.Fatalf("buildResult() error = %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("recompute over identical answers diverged:\n%s\n%s", a, b)
	}
}

func TestBuildResultMissingQuestion(t *testing.T) {
	test, questions, attempt := cognitiveFixture()

	answers := []model.Answer{
		{ID: uuid.New(), QuestionID: uuid.New(), AttemptID: attempt.ID, Answer: strPtr("a")},
	}

	_, err := buildResult(test, questions, answers, attempt, time.Now())
	if !errors.Is(err, ErrDataIntegrity) {
		t.Errorf("buildResult() error = %v, want ErrDataIntegrity", err)
	}
}
