package model

import (
	"testing"
)

func TestParseScoringKey(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    ScoringKey
		wantErr bool
	}{
		{"empty document", "", ScoringKey{Kind: ScoringKeyNone}, false},
		{"null document", "null", ScoringKey{Kind: ScoringKeyNone}, false},
		{"empty object", "{}", ScoringKey{Kind: ScoringKeyNone}, false},
		{"trait form", `{"trait":"dominance"}`,
			ScoringKey{Kind: ScoringKeyTrait, Trait: "dominance"}, false},
		{"exact map", `{"jakarta":2,"bandung":0}`,
			ScoringKey{Kind: ScoringKeyExact, Expected: map[string]float64{"jakarta": 2, "bandung": 0}}, false},
		{"empty trait", `{"trait":""}`, ScoringKey{}, true},
		{"non-string trait", `{"trait":5}`, ScoringKey{}, true},
		{"non-numeric map value", `{"jakarta":"dua"}`, ScoringKey{}, true},
		{"array document", `[1,2]`, ScoringKey{}, true},
		{"bare string", `"dominance"`, ScoringKey{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScoringKey([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseScoringKey(%q) = %+v, want error", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseScoringKey(%q) error = %v", tt.raw, err)
			}
			if got.Kind != tt.want.Kind || got.Trait != tt.want.Trait {
				t.Errorf("ParseScoringKey(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
			if len(got.Expected) != len(tt.want.Expected) {
				t.Fatalf("Expected map size = %d, want %d", len(got.Expected), len(tt.want.Expected))
			}
			for k, v := range tt.want.Expected {
				if got.Expected[k] != v {
					t.Errorf("Expected[%q] = %v, want %v", k, got.Expected[k], v)
				}
			}
		})
	}
}

func TestQuestionTypeValid(t *testing.T) {
	valid := []QuestionType{
		QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeText,
		QuestionTypeRatingScale, QuestionTypeSequence, QuestionTypeMatrix,
		QuestionTypeDrawing,
	}
	for _, qt := range valid {
		if !qt.Valid() {
			t.Errorf("%s should be a valid question type", qt)
		}
	}
	if QuestionType("essay").Valid() {
		t.Error("unknown question type should not be valid")
	}
}

func TestOptionByKey(t *testing.T) {
	q := &Question{Options: []QuestionOption{
		{Key: "a", Label: "Pilihan A"},
		{Key: "b", Label: "Pilihan B"},
	}}

	if opt := q.OptionByKey("b"); opt == nil || opt.Label != "Pilihan B" {
		t.Errorf("OptionByKey(b) = %+v, want Pilihan B", opt)
	}
	if opt := q.OptionByKey("z"); opt != nil {
		t.Errorf("OptionByKey(z) = %+v, want nil", opt)
	}
}
