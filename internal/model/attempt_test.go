package model

import (
	"testing"
	"time"
)

func TestAttemptStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status AttemptStatus
		want   bool
	}{
		{AttemptStatusStarted, false},
		{AttemptStatusInProgress, false},
		{AttemptStatusCompleted, true},
		{AttemptStatusAbandoned, true},
		{AttemptStatusExpired, true},
	}

	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.want {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from AttemptStatus
		to   AttemptStatus
		want bool
	}{
		{AttemptStatusStarted, AttemptStatusInProgress, true},
		{AttemptStatusStarted, AttemptStatusCompleted, true},
		{AttemptStatusStarted, AttemptStatusAbandoned, true},
		{AttemptStatusStarted, AttemptStatusExpired, true},
		{AttemptStatusInProgress, AttemptStatusCompleted, true},
		{AttemptStatusInProgress, AttemptStatusAbandoned, true},
		{AttemptStatusInProgress, AttemptStatusExpired, true},
		// No edges out of terminal states.
		{AttemptStatusCompleted, AttemptStatusInProgress, false},
		{AttemptStatusExpired, AttemptStatusCompleted, false},
		{AttemptStatusAbandoned, AttemptStatusStarted, false},
		// No backward edge.
		{AttemptStatusInProgress, AttemptStatusStarted, false},
		// No self loop.
		{AttemptStatusInProgress, AttemptStatusInProgress, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("CanTransition(%s → %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTimeExpired(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	live := &Attempt{
		Status:  AttemptStatusInProgress,
		EndTime: now.Add(-time.Minute),
	}
	if !live.TimeExpired(now) {
		t.Error("a live attempt past its end time should be time-expired")
	}

	within := &Attempt{
		Status:  AttemptStatusInProgress,
		EndTime: now.Add(time.Minute),
	}
	if within.TimeExpired(now) {
		t.Error("a live attempt inside its window should not be time-expired")
	}

	// The end instant itself is not yet expired.
	atBoundary := &Attempt{Status: AttemptStatusStarted, EndTime: now}
	if atBoundary.TimeExpired(now) {
		t.Error("the end instant itself should not count as expired")
	}

	terminal := &Attempt{
		Status:  AttemptStatusCompleted,
		EndTime: now.Add(-time.Hour),
	}
	if terminal.TimeExpired(now) {
		t.Error("a terminal attempt is never time-expired")
	}
}

func TestRemainingSeconds(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	a := &Attempt{EndTime: now.Add(90 * time.Second)}
	if got := a.RemainingSeconds(now); got != 90 {
		t.Errorf("RemainingSeconds = %d, want 90", got)
	}

	past := &Attempt{EndTime: now.Add(-time.Minute)}
	if got := past.RemainingSeconds(now); got != 0 {
		t.Errorf("RemainingSeconds = %d, want clamped to 0", got)
	}
}

func TestCompletionPercentage(t *testing.T) {
	a := &Attempt{QuestionsAnswered: 3, TotalQuestions: 12}
	if got := a.CompletionPercentage(); got != 25 {
		t.Errorf("CompletionPercentage = %v, want 25", got)
	}

	empty := &Attempt{QuestionsAnswered: 0, TotalQuestions: 0}
	if got := empty.CompletionPercentage(); got != 0 {
		t.Errorf("CompletionPercentage = %v, want 0 for zero questions", got)
	}
}
