package scoring

import (
	"strings"
	"testing"

	"github.com/katalis-id/psikotes-backend/internal/model"
)

func TestBandGrade(t *testing.T) {
	tests := []struct {
		scaled  float64
		passing float64
		want    string
	}{
		{95, 60, "A"},
		{90, 60, "A"},
		{85, 60, "B"},
		{80, 60, "B"},
		{75, 60, "C"},
		{70, 60, "C"},
		{65, 60, "D"},
		{60, 60, "D"},
		{59.9, 60, "E"},
		{0, 60, "E"},
		// A raised passing score narrows the D band.
		{69, 68, "D"},
		{67, 68, "E"},
	}

	for _, tt := range tests {
		if got := BandGrade(tt.scaled, tt.passing); got != tt.want {
			t.Errorf("BandGrade(%v, %v) = %q, want %q", tt.scaled, tt.passing, got, tt.want)
		}
	}
}

func TestSummarizeCognitive(t *testing.T) {
	tests := []struct {
		name       string
		raw        float64
		total      int
		passing    float64
		wantScaled float64
		wantGrade  string
		wantPassed bool
	}{
		{"perfect", 10, 10, 60, 100, "A", true},
		{"exactly passing", 6, 10, 60, 60, "D", true},
		{"just below passing", 5.9, 10, 60, 59, "E", false},
		{"zero", 0, 10, 60, 0, "E", false},
		{"no questions", 0, 0, 60, 0, "E", false},
		{"fractional rounding", 1, 3, 60, 33.33, "E", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SummarizeCognitive(tt.raw, tt.total, tt.passing)
			if got.ScaledScore != tt.wantScaled {
				t.Errorf("ScaledScore = %v, want %v", got.ScaledScore, tt.wantScaled)
			}
			if got.Grade != tt.wantGrade {
				t.Errorf("Grade = %q, want %q", got.Grade, tt.wantGrade)
			}
			if got.IsPassed != tt.wantPassed {
				t.Errorf("IsPassed = %v, want %v", got.IsPassed, tt.wantPassed)
			}
			if got.Percentile != got.ScaledScore {
				t.Errorf("Percentile = %v, want it to equal the scaled score (capped)", got.Percentile)
			}
		})
	}
}

func TestSummarizeCognitivePercentileCap(t *testing.T) {
	// Option score overrides can push the raw sum past the question count;
	// the percentile stays capped at 100.
	got := SummarizeCognitive(15, 10, 60)
	if got.ScaledScore != 150 {
		t.Errorf("ScaledScore = %v, want 150", got.ScaledScore)
	}
	if got.Percentile != 100 {
		t.Errorf("Percentile = %v, want capped at 100", got.Percentile)
	}
}

func TestSummarizeCognitiveDefaultPassing(t *testing.T) {
	got := SummarizeCognitive(6, 10, 0)
	if !got.IsPassed {
		t.Error("a zero passing score should fall back to the default of 60")
	}
}

func TestCognitiveNarrativeDeterministic(t *testing.T) {
	summary := SummarizeCognitive(7, 10, 60)

	desc1, rec1 := CognitiveNarrative(summary)
	desc2, rec2 := CognitiveNarrative(summary)
	if desc1 != desc2 || rec1 != rec2 {
		t.Error("narrative must be deterministic for identical inputs")
	}
	if desc1 == "" || rec1 == "" {
		t.Error("narrative must not be empty for a graded result")
	}
	if !strings.Contains(desc1, "70.00") {
		t.Errorf("description %q should cite the scaled score", desc1)
	}
}

func TestPersonalityNarrative(t *testing.T) {
	profile := []model.TraitScore{
		{Trait: "dominance", Score: 88, RatingCount: 4},
		{Trait: "influence", Score: 50, RatingCount: 4},
	}

	desc, rec := PersonalityNarrative(model.ModuleTypeDISC, profile, 100)
	if !strings.Contains(desc, "dominance") {
		t.Errorf("description %q should name the dominant trait", desc)
	}
	if rec == "" {
		t.Error("recommendation must not be empty when ratings exist")
	}

	// No observations at all: a neutral description, no recommendation.
	empty := []model.TraitScore{{Trait: "dominance", Score: 0, RatingCount: 0}}
	desc, rec = PersonalityNarrative(model.ModuleTypeDISC, empty, 0)
	if desc == "" {
		t.Error("description must not be empty even without observations")
	}
	if rec != "" {
		t.Errorf("recommendation = %q, want empty without observations", rec)
	}
}
