package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates the lifecycle states of an attempt.
type AttemptStatus string

const (
	AttemptStatusStarted    AttemptStatus = "started"
	AttemptStatusInProgress AttemptStatus = "in_progress"
	AttemptStatusCompleted  AttemptStatus = "completed"
	AttemptStatusAbandoned  AttemptStatus = "abandoned"
	AttemptStatusExpired    AttemptStatus = "expired"
)

// IsTerminal reports whether the status is final. No status writes are
// accepted for a terminal attempt.
func (s AttemptStatus) IsTerminal() bool {
	switch s {
	case AttemptStatusCompleted, AttemptStatusAbandoned, AttemptStatusExpired:
		return true
	}
	return false
}

// attemptTransitions is the legal status transition table.
var attemptTransitions = map[AttemptStatus][]AttemptStatus{
	AttemptStatusStarted: {
		AttemptStatusInProgress,
		AttemptStatusCompleted,
		AttemptStatusAbandoned,
		AttemptStatusExpired,
	},
	AttemptStatusInProgress: {
		AttemptStatusCompleted,
		AttemptStatusAbandoned,
		AttemptStatusExpired,
	},
}

// CanTransition reports whether moving from s to next is a legal edge.
func (s AttemptStatus) CanTransition(next AttemptStatus) bool {
	for _, allowed := range attemptTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Attempt represents one participant's timed run through one test.
type Attempt struct {
	ID            uuid.UUID     `json:"id"`
	UserID        int           `json:"user_id"`
	TestID        uuid.UUID     `json:"test_id"`
	SessionID     *uuid.UUID    `json:"session_id,omitempty"`
	AttemptNumber int           `json:"attempt_number"`
	Status        AttemptStatus `json:"status"`
	StartTime     time.Time     `json:"start_time"`
	// EndTime is fixed at creation as start_time + test.time_limit and is
	// never extended.
	EndTime           time.Time  `json:"end_time"`
	ActualEndTime     *time.Time `json:"actual_end_time,omitempty"`
	QuestionsAnswered int        `json:"questions_answered"`
	TotalQuestions    int        `json:"total_questions"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TimeExpired reports whether the attempt's window has passed at the given
// instant. Terminal attempts are never considered time-expired; they already
// carry their final state.
func (a *Attempt) TimeExpired(now time.Time) bool {
	return !a.Status.IsTerminal() && now.After(a.EndTime)
}

// RemainingSeconds returns the seconds left in the window, clamped at zero.
func (a *Attempt) RemainingSeconds(now time.Time) int64 {
	remaining := a.EndTime.Sub(now)
	if remaining < 0 {
		return 0
	}
	return int64(remaining.Seconds())
}

// CompletionPercentage is the answered share of the test in [0,100].
func (a *Attempt) CompletionPercentage() float64 {
	if a.TotalQuestions == 0 {
		return 0
	}
	return float64(a.QuestionsAnswered) / float64(a.TotalQuestions) * 100
}

// StartAttemptRequest is the payload for starting (or resuming) an attempt.
type StartAttemptRequest struct {
	TestID      uuid.UUID `json:"test_id" binding:"required"`
	SessionCode string    `json:"session_code" binding:"omitempty,min=4,max=32"`
}

// UpdateAttemptRequest is the payload for mutating a live attempt.
type UpdateAttemptRequest struct {
	Status            *AttemptStatus `json:"status" binding:"omitempty,oneof=in_progress completed abandoned expired"`
	QuestionsAnswered *int           `json:"questions_answered" binding:"omitempty,min=0"`
}

// FinishAttemptRequest is the payload for terminating an attempt.
type FinishAttemptRequest struct {
	CompletionType    AttemptStatus `json:"completion_type" binding:"required,oneof=completed abandoned expired"`
	QuestionsAnswered *int          `json:"questions_answered" binding:"omitempty,min=0"`
	TimeSpentSeconds  *int          `json:"time_spent_seconds" binding:"omitempty,min=0"`
}

// AttemptProgress is the lightweight progress view for a live attempt.
type AttemptProgress struct {
	AttemptID            uuid.UUID     `json:"attempt_id"`
	Status               AttemptStatus `json:"status"`
	QuestionsAnswered    int           `json:"questions_answered"`
	TotalQuestions       int           `json:"total_questions"`
	CompletionPercentage float64       `json:"completion_percentage"`
	RemainingSeconds     int64         `json:"remaining_seconds"`
	EndTime              time.Time     `json:"end_time"`
}
