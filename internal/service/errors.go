package service

import "errors"

// Domain errors returned by services. Handlers map these onto the typed
// response codes.
var (
	ErrTestNotFound     = errors.New("test not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrAnswerNotFound   = errors.New("answer not found")
	ErrSessionNotFound  = errors.New("session not found")

	// ErrForbiddenAttempt is returned when a participant touches an attempt
	// that belongs to another user.
	ErrForbiddenAttempt = errors.New("attempt belongs to another user")

	// ErrAttemptNotActive covers every write against a terminal or
	// time-expired attempt, including a lost optimistic-concurrency race.
	ErrAttemptNotActive = errors.New("attempt is not active")

	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidProgress   = errors.New("questions_answered exceeds total questions")
	ErrSessionNotActive  = errors.New("session is not active")
	ErrTestNotInSession  = errors.New("test is not a module of this session")
	ErrResultNotReady    = errors.New("result has not been calculated yet")

	// ErrDataIntegrity signals referenced rows that should exist but do not,
	// e.g. an answer pointing at a deleted question.
	ErrDataIntegrity = errors.New("data integrity violation")
)

// AnswerFormatError carries the type-specific validation detail of a
// rejected answer payload.
type AnswerFormatError struct {
	Detail string
}

func (e *AnswerFormatError) Error() string {
	return "invalid answer format: " + e.Detail
}
