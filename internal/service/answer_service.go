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

// DraftJob is one queued auto-save payload, produced by the HTTP and
// WebSocket surfaces and consumed by the autosave worker.
type DraftJob struct {
	UserID           int             `json:"user_id"`
	AttemptID        uuid.UUID       `json:"attempt_id"`
	QuestionID       uuid.UUID       `json:"question_id"`
	Answer           *string         `json:"answer,omitempty"`
	AnswerData       json.RawMessage `json:"answer_data,omitempty"`
	ConfidenceLevel  *int            `json:"confidence_level,omitempty"`
	TimeTakenSeconds *int            `json:"time_taken_seconds,omitempty"`
}

// AnswerService owns answer submission: payload validation, grading on
// non-draft submits, and the buffered auto-save path through Redis.
type AnswerService struct {
	answers    *repository.AnswerRepository
	questions  *repository.QuestionRepository
	tests      *repository.TestRepository
	attemptsDB *repository.AttemptRepository
	attempts   *AttemptService
	rdb        *redis.Client
	log        zerolog.Logger
	clock      func() time.Time
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(
	answers *repository.AnswerRepository,
	questions *repository.QuestionRepository,
	tests *repository.TestRepository,
	attemptsDB *repository.AttemptRepository,
	attempts *AttemptService,
	rdb *redis.Client,
	log zerolog.Logger,
) *AnswerService {
	return &AnswerService{
		answers:    answers,
		questions:  questions,
		tests:      tests,
		attemptsDB: attemptsDB,
		attempts:   attempts,
		rdb:        rdb,
		log:        log.With().Str("service", "answer").Logger(),
		clock:      time.Now,
	}
}

// Submit upserts an answer on its (user, question, attempt) identity. Last
// write wins, no field merging. Non-draft submits are validated and graded
// immediately; draft submits skip grading and tolerate malformed payloads.
// After a non-draft submit the attempt's answered counter is recomputed from
// the answer rows.
func (s *AnswerService) Submit(ctx context.Context, userID int, attemptID uuid.UUID, req model.SubmitAnswerRequest) (*model.Answer, error) {
	attempt, err := s.liveAttempt(ctx, attemptID, userID)
	if err != nil {
		return nil, err
	}

	question, err := s.question(ctx, req.QuestionID, attempt.TestID)
	if err != nil {
		return nil, err
	}

	if err := model.ValidatePayload(question, req.Answer, req.AnswerData); err != nil {
		if !req.IsDraft {
			return nil, &AnswerFormatError{Detail: err.Error()}
		}
		// Drafts are saved anyway so in-progress work is never lost.
		s.log.Warn().
			Str("attempt_id", attemptID.String()).
			Str("question_id", question.ID.String()).
			Str("detail", err.Error()).
			Msg("draft payload failed validation, persisting as-is")
	}

	answer := &model.Answer{
		UserID:           userID,
		QuestionID:       question.ID,
		AttemptID:        attempt.ID,
		Answer:           req.Answer,
		AnswerData:       req.AnswerData,
		IsDraft:          req.IsDraft,
		ConfidenceLevel:  req.ConfidenceLevel,
		TimeTakenSeconds: req.TimeTakenSeconds,
	}

	if !req.IsDraft {
		test, err := s.tests.GetByID(ctx, attempt.TestID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: attempt %s references missing test %s",
					ErrDataIntegrity, attempt.ID, attempt.TestID)
			}
			return nil, fmt.Errorf("load test: %w", err)
		}
		graded := scoring.Score(scoring.ScoreInput{
			Question:   question,
			ModuleType: test.ModuleType,
			Answer:     req.Answer,
			AnswerData: req.AnswerData,
		})
		answer.Score = &graded.Score
		answer.IsCorrect = graded.IsCorrect
	}

	if err := s.answers.Upsert(ctx, answer); err != nil {
		return nil, fmt.Errorf("store answer: %w", err)
	}

	if !req.IsDraft {
		count, err := s.answers.CountAnswered(ctx, attempt.ID)
		if err != nil {
			return nil, fmt.Errorf("count answers: %w", err)
		}
		// A counter write lost to a concurrent termination is not an
		// error here, the answer itself already landed.
		ok, err := s.attemptsDB.UpdateQuestionsAnswered(ctx, attempt.ID, count, s.clock())
		if err != nil {
			return nil, fmt.Errorf("update progress: %w", err)
		}
		if ok {
			attempt.QuestionsAnswered = count
			s.attempts.PublishProgress(ctx, attempt)
		}
	}

	return answer, nil
}

// EnqueueDraft pushes an auto-save payload onto the persistence queue and
// mirrors it into the attempt's draft buffer for immediate reads. The write
// to Postgres happens asynchronously in the autosave worker.
func (s *AnswerService) EnqueueDraft(ctx context.Context, userID int, attemptID uuid.UUID, req model.SubmitAnswerRequest) error {
	if _, err := s.liveAttempt(ctx, attemptID, userID); err != nil {
		return err
	}

	job := DraftJob{
		UserID:           userID,
		AttemptID:        attemptID,
		QuestionID:       req.QuestionID,
		Answer:           req.Answer,
		AnswerData:       req.AnswerData,
		ConfidenceLevel:  req.ConfidenceLevel,
		TimeTakenSeconds: req.TimeTakenSeconds,
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, config.CacheKey.AttemptDraftsKey(attemptID.String()),
		req.QuestionID.String(), payload)
	pipe.RPush(ctx, config.WorkerKey.PersistDraftsQueue, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("enqueue draft: %w", err)
	}
	return nil
}

// PersistDraft writes one queued draft to Postgres. Called by the autosave
// worker. Validation failures and stale references are logged and swallowed:
// a bad draft must never wedge the queue.
func (s *AnswerService) PersistDraft(ctx context.Context, job DraftJob) error {
	attempt, err := s.attemptsDB.GetByID(ctx, job.AttemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.log.Warn().
				Str("attempt_id", job.AttemptID.String()).
				Msg("dropping draft for missing attempt")
			return nil
		}
		return fmt.Errorf("load attempt: %w", err)
	}
	if attempt.Status.IsTerminal() {
		s.clearDraftBuffer(ctx, job)
		return nil
	}

	question, err := s.questions.GetByID(ctx, job.QuestionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.log.Warn().
				Str("question_id", job.QuestionID.String()).
				Msg("dropping draft for missing question")
			return nil
		}
		return fmt.Errorf("load question: %w", err)
	}

	if err := model.ValidatePayload(question, job.Answer, job.AnswerData); err != nil {
		s.log.Warn().
			Str("attempt_id", job.AttemptID.String()).
			Str("question_id", job.QuestionID.String()).
			Str("detail", err.Error()).
			Msg("queued draft failed validation, persisting as-is")
	}

	answer := &model.Answer{
		UserID:           job.UserID,
		QuestionID:       job.QuestionID,
		AttemptID:        job.AttemptID,
		Answer:           job.Answer,
		AnswerData:       job.AnswerData,
		IsDraft:          true,
		ConfidenceLevel:  job.ConfidenceLevel,
		TimeTakenSeconds: job.TimeTakenSeconds,
	}
	if err := s.answers.Upsert(ctx, answer); err != nil {
		return fmt.Errorf("store draft: %w", err)
	}

	s.clearDraftBuffer(ctx, job)
	return nil
}

// List returns an attempt's answers in question order.
func (s *AnswerService) List(ctx context.Context, attemptID uuid.UUID, userID int, isAdmin bool) ([]model.Answer, error) {
	if _, err := s.attempts.Get(ctx, attemptID, userID, isAdmin); err != nil {
		return nil, err
	}
	return s.answers.ListByAttempt(ctx, attemptID)
}

// Get returns one answer of an attempt by its question.
func (s *AnswerService) Get(ctx context.Context, attemptID, questionID uuid.UUID, userID int, isAdmin bool) (*model.Answer, error) {
	attempt, err := s.attempts.Get(ctx, attemptID, userID, isAdmin)
	if err != nil {
		return nil, err
	}
	answer, err := s.answers.Get(ctx, attempt.UserID, questionID, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAnswerNotFound
		}
		return nil, fmt.Errorf("load answer: %w", err)
	}
	return answer, nil
}

func (s *AnswerService) clearDraftBuffer(ctx context.Context, job DraftJob) {
	key := config.CacheKey.AttemptDraftsKey(job.AttemptID.String())
	if err := s.rdb.HDel(ctx, key, job.QuestionID.String()).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to clear draft buffer")
	}
}

// liveAttempt loads an owned attempt and rejects writes against terminal or
// time-expired ones.
func (s *AnswerService) liveAttempt(ctx context.Context, attemptID uuid.UUID, userID int) (*model.Attempt, error) {
	attempt, err := s.attempts.Get(ctx, attemptID, userID, false)
	if err != nil {
		return nil, err
	}
	if attempt.Status.IsTerminal() {
		return nil, ErrAttemptNotActive
	}
	return attempt, nil
}

// question loads a question and checks it belongs to the attempt's test.
func (s *AnswerService) question(ctx context.Context, questionID, testID uuid.UUID) (*model.Question, error) {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("load question: %w", err)
	}
	if question.TestID != testID {
		return nil, ErrQuestionNotFound
	}
	return question, nil
}
