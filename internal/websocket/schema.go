package websocket

import (
	"encoding/json"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAutosave Action = "autosave"
	ActionProgress Action = "progress"
	ActionPing     Action = "ping"
)

// AutosaveRequest queues one draft answer for asynchronous persistence.
type AutosaveRequest struct {
	Action           Action          `json:"action"`
	QuestionID       string          `json:"question_id"`
	Answer           *string         `json:"answer,omitempty"`
	AnswerData       json.RawMessage `json:"answer_data,omitempty"`
	ConfidenceLevel  *int            `json:"confidence_level,omitempty"`
	TimeTakenSeconds *int            `json:"time_taken_seconds,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventSuccess  Event = "success"
	EventProgress Event = "progress"
	EventPong     Event = "pong"
)

type AutosaveResponse struct {
	Event  Event  `json:"event"`
	Status string `json:"status"`
}

type ProgressResponse struct {
	Event    Event       `json:"event"`
	Progress interface{} `json:"progress"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
