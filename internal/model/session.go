package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates test session states.
type SessionStatus string

const (
	SessionStatusDraft   SessionStatus = "draft"
	SessionStatusActive  SessionStatus = "active"
	SessionStatusExpired SessionStatus = "expired"
	SessionStatusClosed  SessionStatus = "closed"
)

// TestSession is a scheduled administration window grouping one or more test
// modules. Attempts may optionally be bound to a session via its code.
type TestSession struct {
	ID         uuid.UUID     `json:"id"`
	Code       string        `json:"code"`
	Name       string        `json:"name"`
	Status     SessionStatus `json:"status"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	AutoExpire bool          `json:"auto_expire"`
	CreatedAt  time.Time     `json:"created_at"`
}

// ActiveWindow reports whether the session is currently inside its scheduled
// time window.
func (s *TestSession) ActiveWindow(now time.Time) bool {
	return !now.Before(s.StartTime) && !now.After(s.EndTime)
}

// SessionModule binds a test to a session with a reporting weight.
type SessionModule struct {
	SessionID uuid.UUID `json:"session_id"`
	TestID    uuid.UUID `json:"test_id"`
	Weight    float64   `json:"weight"`
	Position  int       `json:"position"`
}
