package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestValidatePayload(t *testing.T) {
	mc := &Question{
		QuestionType: QuestionTypeMultipleChoice,
		Options: []QuestionOption{
			{Key: "a", Label: "Pilihan A"},
			{Key: "b", Label: "Pilihan B"},
		},
	}

	tests := []struct {
		name     string
		question *Question
		answer   *string
		data     json.RawMessage
		wantErr  string
	}{
		{"mc valid", mc, strPtr("a"), nil, ""},
		{"mc unknown option", mc, strPtr("z"), nil, "not an option"},
		{"mc missing", mc, nil, nil, "required"},

		{"tf true", &Question{QuestionType: QuestionTypeTrueFalse}, strPtr("true"), nil, ""},
		{"tf false", &Question{QuestionType: QuestionTypeTrueFalse}, strPtr("false"), nil, ""},
		{"tf other", &Question{QuestionType: QuestionTypeTrueFalse}, strPtr("yes"), nil, "true"},

		{"text valid", &Question{QuestionType: QuestionTypeText}, strPtr("jawaban"), nil, ""},
		{"text empty", &Question{QuestionType: QuestionTypeText}, strPtr(""), nil, "required"},

		{"rating valid", &Question{QuestionType: QuestionTypeRatingScale}, strPtr("3"), nil, ""},
		{"rating too high", &Question{QuestionType: QuestionTypeRatingScale}, strPtr("6"), nil, "between 1 and 5"},
		{"rating not numeric", &Question{QuestionType: QuestionTypeRatingScale}, strPtr("x"), nil, "between 1 and 5"},

		{"sequence valid", &Question{QuestionType: QuestionTypeSequence}, nil,
			json.RawMessage(`{"order":["a","b"]}`), ""},
		{"sequence empty order", &Question{QuestionType: QuestionTypeSequence}, nil,
			json.RawMessage(`{"order":[]}`), "must not be empty"},
		{"sequence duplicate", &Question{QuestionType: QuestionTypeSequence}, nil,
			json.RawMessage(`{"order":["a","a"]}`), "duplicate"},
		{"sequence wrong shape", &Question{QuestionType: QuestionTypeSequence}, nil,
			json.RawMessage(`{"cells":{"r1":"c1"}}`), "answer_data"},
		{"sequence null", &Question{QuestionType: QuestionTypeSequence}, nil,
			json.RawMessage(`null`), "required"},

		{"matrix valid", &Question{QuestionType: QuestionTypeMatrix}, nil,
			json.RawMessage(`{"cells":{"r1":"c2"}}`), ""},
		{"matrix empty", &Question{QuestionType: QuestionTypeMatrix}, nil,
			json.RawMessage(`{"cells":{}}`), "must not be empty"},

		{"drawing valid", &Question{QuestionType: QuestionTypeDrawing}, nil,
			json.RawMessage(`{"strokes":[[1,2],[3,4]]}`), ""},
		{"drawing empty", &Question{QuestionType: QuestionTypeDrawing}, nil,
			json.RawMessage(`{"strokes":[]}`), "must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayload(tt.question, tt.answer, tt.data)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidatePayload() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidatePayload() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidatePayload() = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestCanonicalValue(t *testing.T) {
	seq := &Question{QuestionType: QuestionTypeSequence}
	if got := CanonicalValue(seq, nil, json.RawMessage(`{"order":["b","a","c"]}`)); got != "b,a,c" {
		t.Errorf("sequence canonical = %q, want %q", got, "b,a,c")
	}

	scalar := &Question{QuestionType: QuestionTypeText}
	if got := CanonicalValue(scalar, strPtr("jakarta"), nil); got != "jakarta" {
		t.Errorf("scalar canonical = %q, want %q", got, "jakarta")
	}
	if got := CanonicalValue(scalar, nil, nil); got != "" {
		t.Errorf("nil scalar canonical = %q, want empty", got)
	}

	// Matrix blobs canonicalize through compact re-serialization, so key
	// order in the submitted document does not matter.
	matrix := &Question{QuestionType: QuestionTypeMatrix}
	a := CanonicalValue(matrix, nil, json.RawMessage(`{"cells":{"r1":"c1","r2":"c2"}}`))
	b := CanonicalValue(matrix, nil, json.RawMessage(`{"cells":{"r2":"c2","r1":"c1"}}`))
	if a == "" || a != b {
		t.Errorf("matrix canonical values differ: %q vs %q", a, b)
	}
}

func TestAnswered(t *testing.T) {
	tests := []struct {
		name   string
		answer *Answer
		want   bool
	}{
		{"scalar content", &Answer{Answer: strPtr("a")}, true},
		{"empty scalar", &Answer{Answer: strPtr("")}, false},
		{"structured content", &Answer{AnswerData: json.RawMessage(`{"order":["a"]}`)}, true},
		{"null structured", &Answer{AnswerData: json.RawMessage(`null`)}, false},
		{"nothing", &Answer{}, false},
		{"draft with content", &Answer{Answer: strPtr("b"), IsDraft: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.answer.Answered(); got != tt.want {
				t.Errorf("Answered() = %v, want %v", got, tt.want)
			}
		})
	}
}
