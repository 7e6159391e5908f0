package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Answer represents one participant's response to one question within one
// attempt. Identity is unique on (user_id, question_id, attempt_id); rows are
// overwritten on resubmission and never deleted.
type Answer struct {
	ID         uuid.UUID `json:"id"`
	UserID     int       `json:"user_id"`
	QuestionID uuid.UUID `json:"question_id"`
	AttemptID  uuid.UUID `json:"attempt_id"`
	// Answer holds scalar responses (option key, true/false, rating, text).
	Answer *string `json:"answer,omitempty"`
	// AnswerData holds structured responses (drawing, sequence, matrix).
	AnswerData       json.RawMessage `json:"answer_data,omitempty"`
	Score            *float64        `json:"score,omitempty"`
	IsCorrect        *bool           `json:"is_correct,omitempty"`
	IsDraft          bool            `json:"is_draft"`
	ConfidenceLevel  *int            `json:"confidence_level,omitempty"`
	TimeTakenSeconds *int            `json:"time_taken_seconds,omitempty"`
	AnsweredAt       time.Time       `json:"answered_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Answered reports whether the row carries any response content. Drafts with
// content still count toward attempt progress.
func (a *Answer) Answered() bool {
	if a.Answer != nil && *a.Answer != "" {
		return true
	}
	return len(a.AnswerData) > 0 && string(a.AnswerData) != "null"
}

// SubmitAnswerRequest is the payload for submitting or drafting an answer.
type SubmitAnswerRequest struct {
	QuestionID       uuid.UUID       `json:"question_id" binding:"required"`
	Answer           *string         `json:"answer" binding:"omitempty,max=10000"`
	AnswerData       json.RawMessage `json:"answer_data" binding:"omitempty"`
	IsDraft          bool            `json:"is_draft"`
	ConfidenceLevel  *int            `json:"confidence_level" binding:"omitempty,min=1,max=5"`
	TimeTakenSeconds *int            `json:"time_taken_seconds" binding:"omitempty,min=0"`
}

// ────────────────────────────────────────────────────────────────────────────
// Payload validation, one variant per question type
// ────────────────────────────────────────────────────────────────────────────

// SequencePayload is the structured response for sequence questions.
type SequencePayload struct {
	Order []string `json:"order"`
}

// MatrixPayload is the structured response for matrix questions: a mapping of
// row key to selected column key.
type MatrixPayload struct {
	Cells map[string]string `json:"cells"`
}

// DrawingPayload is the structured response for drawing questions. Strokes
// are kept opaque; the core only requires that some drawing content exists.
type DrawingPayload struct {
	Strokes []json.RawMessage `json:"strokes"`
}

// ValidatePayload checks a submitted answer/answer_data pair against the
// question's type-specific schema. Non-draft submits are rejected on failure;
// auto-save logs the failure and persists anyway.
func ValidatePayload(q *Question, answer *string, data json.RawMessage) error {
	switch q.QuestionType {
	case QuestionTypeMultipleChoice:
		if answer == nil || *answer == "" {
			return fmt.Errorf("answer: option key is required")
		}
		if len(q.Options) > 0 && q.OptionByKey(*answer) == nil {
			return fmt.Errorf("answer: %q is not an option of this question", *answer)
		}
		return nil

	case QuestionTypeTrueFalse:
		if answer == nil || (*answer != "true" && *answer != "false") {
			return fmt.Errorf("answer: must be \"true\" or \"false\"")
		}
		return nil

	case QuestionTypeText:
		if answer == nil || *answer == "" {
			return fmt.Errorf("answer: text response is required")
		}
		return nil

	case QuestionTypeRatingScale:
		if answer == nil {
			return fmt.Errorf("answer: rating is required")
		}
		rating, err := strconv.Atoi(*answer)
		if err != nil || rating < 1 || rating > 5 {
			return fmt.Errorf("answer: rating must be an integer between 1 and 5")
		}
		return nil

	case QuestionTypeSequence:
		var p SequencePayload
		if err := unmarshalStrict(data, &p); err != nil {
			return fmt.Errorf("answer_data: %v", err)
		}
		if len(p.Order) == 0 {
			return fmt.Errorf("answer_data: order must not be empty")
		}
		seen := make(map[string]bool, len(p.Order))
		for _, item := range p.Order {
			if item == "" {
				return fmt.Errorf("answer_data: order contains an empty item")
			}
			if seen[item] {
				return fmt.Errorf("answer_data: order contains duplicate item %q", item)
			}
			seen[item] = true
		}
		return nil

	case QuestionTypeMatrix:
		var p MatrixPayload
		if err := unmarshalStrict(data, &p); err != nil {
			return fmt.Errorf("answer_data: %v", err)
		}
		if len(p.Cells) == 0 {
			return fmt.Errorf("answer_data: cells must not be empty")
		}
		return nil

	case QuestionTypeDrawing:
		var p DrawingPayload
		if err := unmarshalStrict(data, &p); err != nil {
			return fmt.Errorf("answer_data: %v", err)
		}
		if len(p.Strokes) == 0 {
			return fmt.Errorf("answer_data: strokes must not be empty")
		}
		return nil
	}

	return fmt.Errorf("unsupported question type %q", q.QuestionType)
}

// CanonicalValue flattens a validated response into the single comparable
// string used for exact-match scoring. Scalar answers pass through; sequence
// payloads join their order, matrix payloads serialize sorted cells.
func CanonicalValue(q *Question, answer *string, data json.RawMessage) string {
	switch q.QuestionType {
	case QuestionTypeSequence:
		var p SequencePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return ""
		}
		out := ""
		for i, item := range p.Order {
			if i > 0 {
				out += ","
			}
			out += item
		}
		return out
	case QuestionTypeMatrix, QuestionTypeDrawing:
		// Structured blobs compare by their compact serialization.
		var compact interface{}
		if err := json.Unmarshal(data, &compact); err != nil {
			return ""
		}
		b, _ := json.Marshal(compact)
		return string(b)
	}
	if answer == nil {
		return ""
	}
	return *answer
}

// unmarshalStrict rejects empty, null, and unknown-field documents, so
// payloads of the wrong variant fail instead of silently decoding to zero.
func unmarshalStrict(data json.RawMessage, dst interface{}) error {
	if len(data) == 0 || string(data) == "null" {
		return fmt.Errorf("structured payload is required")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
