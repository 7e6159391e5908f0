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
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// AttemptService owns the attempt lifecycle: start with idempotent resume,
// status transitions, progress tracking, and termination. Expiry is lazy:
// there is no background watcher flipping attempts, the deadline is enforced
// whenever an attempt is loaded.
type AttemptService struct {
	attempts *repository.AttemptRepository
	tests    *repository.TestRepository
	sessions *repository.SessionRepository
	answers  *repository.AnswerRepository
	results  *ResultService
	rdb      *redis.Client
	log      zerolog.Logger
	clock    func() time.Time
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	attempts *repository.AttemptRepository,
	tests *repository.TestRepository,
	sessions *repository.SessionRepository,
	answers *repository.AnswerRepository,
	results *ResultService,
	rdb *redis.Client,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		attempts: attempts,
		tests:    tests,
		sessions: sessions,
		answers:  answers,
		results:  results,
		rdb:      rdb,
		log:      log.With().Str("service", "attempt").Logger(),
		clock:    time.Now,
	}
}

// Start begins a new attempt, or resumes the participant's existing live
// attempt for the same (test, session) pair. A stale live attempt whose
// window has passed is expired first and a fresh attempt created. The
// returned bool reports whether an existing attempt was resumed.
func (s *AttemptService) Start(ctx context.Context, userID int, req model.StartAttemptRequest) (*model.Attempt, bool, error) {
	test, err := s.tests.GetByID(ctx, req.TestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, ErrTestNotFound
		}
		return nil, false, fmt.Errorf("load test: %w", err)
	}

	now := s.clock()

	var sessionID *uuid.UUID
	if req.SessionCode != "" {
		sess, err := s.sessions.GetByCode(ctx, req.SessionCode)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, false, ErrSessionNotFound
			}
			return nil, false, fmt.Errorf("load session: %w", err)
		}
		if sess.Status != model.SessionStatusActive || !sess.ActiveWindow(now) {
			return nil, false, ErrSessionNotActive
		}
		hasModule, err := s.sessions.HasModule(ctx, sess.ID, test.ID)
		if err != nil {
			return nil, false, fmt.Errorf("check session module: %w", err)
		}
		if !hasModule {
			return nil, false, ErrTestNotInSession
		}
		sessionID = &sess.ID
	}

	existing, err := s.attempts.GetNonTerminal(ctx, userID, test.ID, sessionID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("find live attempt: %w", err)
	}
	if existing != nil {
		if !existing.TimeExpired(now) {
			s.log.Info().
				Str("attempt_id", existing.ID.String()).
				Int("user_id", userID).
				Msg("resuming live attempt")
			return existing, true, nil
		}
		// Stale live attempt: expire it, then fall through to a new one.
		if _, err := s.attempts.MarkExpired(ctx, existing.ID, now); err != nil {
			return nil, false, fmt.Errorf("expire stale attempt: %w", err)
		}
	}

	attempt := &model.Attempt{
		UserID:         userID,
		TestID:         test.ID,
		SessionID:      sessionID,
		Status:         model.AttemptStatusStarted,
		StartTime:      now,
		EndTime:        now.Add(test.TimeLimit()),
		TotalQuestions: test.TotalQuestions,
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		return nil, false, fmt.Errorf("create attempt: %w", err)
	}

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Int("user_id", userID).
		Str("test_id", test.ID.String()).
		Int("attempt_number", attempt.AttemptNumber).
		Time("end_time", attempt.EndTime).
		Msg("attempt started")

	return attempt, false, nil
}

// Get loads an attempt, enforcing ownership for participants and applying
// lazy expiry when the window has passed.
func (s *AttemptService) Get(ctx context.Context, attemptID uuid.UUID, userID int, isAdmin bool) (*model.Attempt, error) {
	attempt, err := s.load(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && attempt.UserID != userID {
		return nil, ErrForbiddenAttempt
	}
	return attempt, nil
}

// Update mutates a live attempt: a status transition validated against the
// transition table, a write of the questions_answered counter, or both.
func (s *AttemptService) Update(ctx context.Context, attemptID uuid.UUID, userID int, req model.UpdateAttemptRequest) (*model.Attempt, error) {
	attempt, err := s.Get(ctx, attemptID, userID, false)
	if err != nil {
		return nil, err
	}
	if attempt.Status.IsTerminal() {
		return nil, ErrAttemptNotActive
	}

	now := s.clock()

	count := attempt.QuestionsAnswered
	if req.QuestionsAnswered != nil {
		if *req.QuestionsAnswered > attempt.TotalQuestions {
			return nil, ErrInvalidProgress
		}
		count = *req.QuestionsAnswered
	}

	if req.Status != nil {
		next := *req.Status
		if !attempt.Status.CanTransition(next) {
			return nil, ErrInvalidTransition
		}

		if next.IsTerminal() {
			ok, err := s.attempts.Finish(ctx, attempt.ID, next, count, now)
			if err != nil {
				return nil, fmt.Errorf("finish attempt: %w", err)
			}
			if !ok {
				return nil, ErrAttemptNotActive
			}
			attempt.Status = next
			attempt.QuestionsAnswered = count
			attempt.ActualEndTime = &now

			if next == model.AttemptStatusCompleted {
				if _, err := s.results.CalculateForAttempt(ctx, attempt, false); err != nil {
					return nil, fmt.Errorf("calculate result: %w", err)
				}
			}
		} else {
			ok, err := s.attempts.UpdateStatus(ctx, attempt.ID, attempt.Status, next, now)
			if err != nil {
				return nil, fmt.Errorf("update status: %w", err)
			}
			if !ok {
				return nil, ErrAttemptNotActive
			}
			attempt.Status = next
		}
	}

	if count != attempt.QuestionsAnswered {
		ok, err := s.attempts.UpdateQuestionsAnswered(ctx, attempt.ID, count, now)
		if err != nil {
			return nil, fmt.Errorf("update progress: %w", err)
		}
		if !ok {
			return nil, ErrAttemptNotActive
		}
		attempt.QuestionsAnswered = count
	}

	s.PublishProgress(ctx, attempt)
	return attempt, nil
}

// Finish terminates a live attempt with the requested completion type. When
// the attempt's window has already passed, the recorded status becomes
// expired regardless of what was requested. Completing an attempt triggers
// result calculation synchronously; the returned result is non-nil only for
// the completed case.
func (s *AttemptService) Finish(ctx context.Context, attemptID uuid.UUID, userID int, req model.FinishAttemptRequest) (*model.Attempt, *model.Result, error) {
	// Fetch the raw row: lazy expiry must not fire here, a live attempt
	// caught past its deadline is finished as expired rather than rejected.
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrAttemptNotFound
		}
		return nil, nil, fmt.Errorf("load attempt: %w", err)
	}
	if attempt.UserID != userID {
		return nil, nil, ErrForbiddenAttempt
	}

	now := s.clock()

	status, err := finishDecision(attempt, req.CompletionType, now)
	if err != nil {
		return nil, nil, err
	}

	count := attempt.QuestionsAnswered
	if req.QuestionsAnswered != nil {
		count = *req.QuestionsAnswered
	} else {
		answered, err := s.answers.CountAnswered(ctx, attempt.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("count answers: %w", err)
		}
		count = answered
	}
	if count > attempt.TotalQuestions {
		return nil, nil, ErrInvalidProgress
	}

	ok, err := s.attempts.Finish(ctx, attempt.ID, status, count, now)
	if err != nil {
		return nil, nil, fmt.Errorf("finish attempt: %w", err)
	}
	if !ok {
		// A concurrent reader expired it first. The finish still resolves
		// to the expired attempt; anything else terminal is a conflict.
		current, err := s.attempts.GetByID(ctx, attempt.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("reload attempt: %w", err)
		}
		if current.Status != model.AttemptStatusExpired {
			return nil, nil, ErrAttemptNotActive
		}
		return current, nil, nil
	}
	attempt.Status = status
	attempt.QuestionsAnswered = count
	attempt.ActualEndTime = &now

	evt := s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Int("user_id", userID).
		Str("status", string(status)).
		Int("questions_answered", count)
	if req.TimeSpentSeconds != nil {
		evt = evt.Int("time_spent_seconds", *req.TimeSpentSeconds)
	}
	evt.Msg("attempt finished")

	var result *model.Result
	if status == model.AttemptStatusCompleted {
		result, err = s.results.CalculateForAttempt(ctx, attempt, false)
		if err != nil {
			return nil, nil, fmt.Errorf("calculate result: %w", err)
		}
	}

	s.PublishProgress(ctx, attempt)
	return attempt, result, nil
}

// Progress returns the lightweight live view of an attempt.
func (s *AttemptService) Progress(ctx context.Context, attemptID uuid.UUID, userID int, isAdmin bool) (*model.AttemptProgress, error) {
	attempt, err := s.Get(ctx, attemptID, userID, isAdmin)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	return &model.AttemptProgress{
		AttemptID:            attempt.ID,
		Status:               attempt.Status,
		QuestionsAnswered:    attempt.QuestionsAnswered,
		TotalQuestions:       attempt.TotalQuestions,
		CompletionPercentage: attempt.CompletionPercentage(),
		RemainingSeconds:     attempt.RemainingSeconds(now),
		EndTime:              attempt.EndTime,
	}, nil
}

// ListByUser returns the participant's attempt history, newest first.
func (s *AttemptService) ListByUser(ctx context.Context, userID int) ([]model.Attempt, error) {
	return s.attempts.ListByUser(ctx, userID)
}

// ListBySession returns the admin aggregate view of a session's attempts.
func (s *AttemptService) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]repository.SessionAttemptRow, error) {
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return s.attempts.ListBySession(ctx, sessionID)
}

// PublishProgress pushes a progress event onto the session's monitor channel.
// Attempts outside a session have no monitor audience and publish nothing.
// Publish failures are logged, never surfaced: monitoring is best-effort.
func (s *AttemptService) PublishProgress(ctx context.Context, attempt *model.Attempt) {
	if attempt.SessionID == nil {
		return
	}
	progress := model.AttemptProgress{
		AttemptID:            attempt.ID,
		Status:               attempt.Status,
		QuestionsAnswered:    attempt.QuestionsAnswered,
		TotalQuestions:       attempt.TotalQuestions,
		CompletionPercentage: attempt.CompletionPercentage(),
		RemainingSeconds:     attempt.RemainingSeconds(s.clock()),
		EndTime:              attempt.EndTime,
	}
	payload, err := json.Marshal(progress)
	if err != nil {
		return
	}
	channel := config.CacheKey.AttemptProgressChannel(attempt.SessionID.String())
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Warn().Err(err).
			Str("attempt_id", attempt.ID.String()).
			Msg("failed to publish progress event")
	}
}

// finishDecision resolves the status to record for a finishing attempt. An
// attempt that was already terminal before this call cannot be finished
// again; one that merely ran past its deadline is finished as expired no
// matter which completion type was requested.
func finishDecision(attempt *model.Attempt, requested model.AttemptStatus, now time.Time) (model.AttemptStatus, error) {
	if attempt.Status.IsTerminal() {
		return "", ErrAttemptNotActive
	}
	if now.After(attempt.EndTime) {
		return model.AttemptStatusExpired, nil
	}
	return requested, nil
}

// load fetches an attempt and applies lazy expiry: a live attempt whose
// window has passed is flipped to expired before it is returned.
func (s *AttemptService) load(ctx context.Context, attemptID uuid.UUID) (*model.Attempt, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}

	now := s.clock()
	if attempt.TimeExpired(now) {
		ok, err := s.attempts.MarkExpired(ctx, attempt.ID, now)
		if err != nil {
			return nil, fmt.Errorf("expire attempt: %w", err)
		}
		if ok {
			attempt.Status = model.AttemptStatusExpired
			attempt.ActualEndTime = &now
			attempt.UpdatedAt = now
			s.log.Info().
				Str("attempt_id", attempt.ID.String()).
				Msg("attempt lazily expired")
		} else {
			// A concurrent writer terminated it first: reload the final state.
			attempt, err = s.attempts.GetByID(ctx, attemptID)
			if err != nil {
				return nil, fmt.Errorf("reload attempt: %w", err)
			}
		}
	}
	return attempt, nil
}
