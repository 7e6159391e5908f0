package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/katalis-id/psikotes-backend/internal/config"
	"github.com/katalis-id/psikotes-backend/internal/model"
	"github.com/katalis-id/psikotes-backend/internal/repository"
	"github.com/katalis-id/psikotes-backend/internal/scoring"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ResultService derives results from stored answers. Recompute is idempotent:
// every answer is re-graded from its current row, cached scores are never
// trusted, and the result row is overwritten in place.
type ResultService struct {
	results   *repository.ResultRepository
	attempts  *repository.AttemptRepository
	tests     *repository.TestRepository
	questions *repository.QuestionRepository
	answers   *repository.AnswerRepository
	rdb       *redis.Client
	log       zerolog.Logger
	clock     func() time.Time
}

// questionCacheTTL bounds staleness of the per-test question payload cache.
const questionCacheTTL = 10 * time.Minute

// NewResultService creates a new ResultService.
func NewResultService(
	results *repository.ResultRepository,
	attempts *repository.AttemptRepository,
	tests *repository.TestRepository,
	questions *repository.QuestionRepository,
	answers *repository.AnswerRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *ResultService {
	return &ResultService{
		results:   results,
		attempts:  attempts,
		tests:     tests,
		questions: questions,
		answers:   answers,
		rdb:       rdb,
		log:       log.With().Str("service", "result").Logger(),
		clock:     time.Now,
	}
}

// Get retrieves the result of an attempt, enforcing ownership for
// participants.
func (s *ResultService) Get(ctx context.Context, attemptID uuid.UUID, userID int, isAdmin bool) (*model.Result, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}
	if !isAdmin && attempt.UserID != userID {
		return nil, ErrForbiddenAttempt
	}

	result, err := s.results.GetByAttempt(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResultNotReady
		}
		return nil, fmt.Errorf("load result: %w", err)
	}
	return result, nil
}

// Calculate computes (or with force, recomputes) the result of an attempt by
// its ID. Admin recalculation entry point.
func (s *ResultService) Calculate(ctx context.Context, attemptID uuid.UUID, force bool) (*model.Result, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}
	return s.CalculateForAttempt(ctx, attempt, force)
}

// CalculateForAttempt computes the result for an already-loaded attempt.
// Without force, an existing result is returned as-is.
func (s *ResultService) CalculateForAttempt(ctx context.Context, attempt *model.Attempt, force bool) (*model.Result, error) {
	if !force {
		existing, err := s.results.GetByAttempt(ctx, attempt.ID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("load result: %w", err)
		}
	}

	test, err := s.tests.GetByID(ctx, attempt.TestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: attempt %s references missing test %s",
				ErrDataIntegrity, attempt.ID, attempt.TestID)
		}
		return nil, fmt.Errorf("load test: %w", err)
	}

	if force {
		// A forced recompute must not grade against stale question data.
		s.rdb.Del(ctx, config.CacheKey.TestQuestionsKey(attempt.TestID.String()))
	}
	questionList, err := s.loadQuestions(ctx, attempt.TestID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	questions := make(map[uuid.UUID]*model.Question, len(questionList))
	for i := range questionList {
		questions[questionList[i].ID] = &questionList[i]
	}

	answers, err := s.answers.ListByAttempt(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}

	result, err := buildResult(test, questions, answers, attempt, s.clock())
	if err != nil {
		return nil, err
	}

	if err := s.results.Upsert(ctx, result); err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Str("test_id", test.ID.String()).
		Float64("raw_score", result.RawScore).
		Float64("scaled_score", result.ScaledScore).
		Bool("recomputed", force).
		Msg("result calculated")

	return result, nil
}

// loadQuestions reads the test's question payload through the Redis cache.
// Cache failures fall back to the database silently.
func (s *ResultService) loadQuestions(ctx context.Context, testID uuid.UUID) ([]model.Question, error) {
	cacheKey := config.CacheKey.TestQuestionsKey(testID.String())

	if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
		var questions []model.Question
		if err := json.Unmarshal([]byte(cached), &questions); err == nil {
			return questions, nil
		}
		s.rdb.Del(ctx, cacheKey)
	}

	questions, err := s.questions.ListByTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(questions); err == nil {
		_ = s.rdb.Set(ctx, cacheKey, payload, questionCacheTTL)
	}
	return questions, nil
}

// buildResult grades the current answer set and assembles the result. Pure
// apart from the passed-in timestamp, so the whole derivation is testable
// without storage.
func buildResult(test *model.Test, questions map[uuid.UUID]*model.Question, answers []model.Answer, attempt *model.Attempt, now time.Time) (*model.Result, error) {
	answered := 0
	rawScore := 0.0
	ratings := make(map[string][]float64)

	for i := range answers {
		ans := &answers[i]
		if ans.Answered() {
			answered++
		}
		if ans.IsDraft {
			// Drafts count toward progress but are never graded.
			continue
		}

		question, ok := questions[ans.QuestionID]
		if !ok {
			return nil, fmt.Errorf("%w: answer %s references missing question %s",
				ErrDataIntegrity, ans.ID, ans.QuestionID)
		}

		graded := scoring.Score(scoring.ScoreInput{
			Question:   question,
			ModuleType: test.ModuleType,
			Answer:     ans.Answer,
			AnswerData: ans.AnswerData,
		})
		rawScore += graded.Score
		if graded.Trait != "" && graded.Score >= 1 {
			ratings[graded.Trait] = append(ratings[graded.Trait], graded.Score)
		}
	}

	completion := 0.0
	if attempt.TotalQuestions > 0 {
		completion = float64(answered) / float64(attempt.TotalQuestions) * 100
	}

	result := &model.Result{
		AttemptID:            attempt.ID,
		UserID:               attempt.UserID,
		TestID:               attempt.TestID,
		RawScore:             rawScore,
		CompletionPercentage: completion,
		Traits:               []model.TraitScore{},
		CalculatedAt:         now,
	}

	if test.IsPersonality() {
		// No pass/fail semantics: grade, percentile, and is_passed stay null.
		result.ScaledScore = completion
		result.Traits = scoring.BuildTraitProfile(test.ModuleType, ratings)
		result.Description, result.Recommendation =
			scoring.PersonalityNarrative(test.ModuleType, result.Traits, completion)
		return result, nil
	}

	passing := test.PassingScore
	if passing <= 0 {
		passing = model.DefaultPassingScore
	}
	summary := scoring.SummarizeCognitive(rawScore, attempt.TotalQuestions, passing)
	result.ScaledScore = summary.ScaledScore
	result.Percentile = &summary.Percentile
	result.Grade = &summary.Grade
	result.IsPassed = &summary.IsPassed
	result.Description, result.Recommendation = scoring.CognitiveNarrative(summary)
	return result, nil
}
