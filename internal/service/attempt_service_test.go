package service

import (
	"errors"
	"testing"
	"time"

	"github.com/katalis-id/psikotes-backend/internal/model"
)

func TestFinishDecisionPastDeadlineForcesExpired(t *testing.T) {
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	attempt := &model.Attempt{
		Status:    model.AttemptStatusInProgress,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
	}

	// One minute past the deadline: the requested completion type loses.
	now := start.Add(31 * time.Minute)
	status, err := finishDecision(attempt, model.AttemptStatusCompleted, now)
	if err != nil {
		t.Fatalf("finishDecision returned %v, want success", err)
	}
	if status != model.AttemptStatusExpired {
		t.Errorf("status = %q, want %q", status, model.AttemptStatusExpired)
	}
}

func TestFinishDecisionWithinWindow(t *testing.T) {
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	attempt := &model.Attempt{
		Status:    model.AttemptStatusStarted,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
	}

	for _, requested := range []model.AttemptStatus{
		model.AttemptStatusCompleted,
		model.AttemptStatusAbandoned,
	} {
		status, err := finishDecision(attempt, requested, start.Add(10*time.Minute))
		if err != nil {
			t.Fatalf("%s: finishDecision returned %v, want success", requested, err)
		}
		if status != requested {
			t.Errorf("status = %q, want %q", status, requested)
		}
	}
}

func TestFinishDecisionRejectsTerminalAttempt(t *testing.T) {
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	for _, prior := range []model.AttemptStatus{
		model.AttemptStatusCompleted,
		model.AttemptStatusAbandoned,
		model.AttemptStatusExpired,
	} {
		attempt := &model.Attempt{
			Status:    prior,
			StartTime: start,
			EndTime:   start.Add(30 * time.Minute),
		}
		_, err := finishDecision(attempt, model.AttemptStatusCompleted, start.Add(5*time.Minute))
		if !errors.Is(err, ErrAttemptNotActive) {
			t.Errorf("%s: err = %v, want %v", prior, err, ErrAttemptNotActive)
		}
	}
}
