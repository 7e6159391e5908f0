package scoring

import (
	"testing"

	"github.com/katalis-id/psikotes-backend/internal/model"
)

func TestTaxonomySizes(t *testing.T) {
	tests := []struct {
		moduleType model.ModuleType
		want       int
	}{
		{model.ModuleTypeDISC, 4},
		{model.ModuleTypeBigFive, 5},
		{model.ModuleTypeMBTI, 4},
		{model.ModuleTypeEPPS, 15},
		{model.ModuleTypeCognitive, 0},
	}

	for _, tt := range tests {
		if got := len(Taxonomy(tt.moduleType)); got != tt.want {
			t.Errorf("Taxonomy(%s) has %d traits, want %d", tt.moduleType, got, tt.want)
		}
	}
}

func TestTraitScore(t *testing.T) {
	tests := []struct {
		name    string
		ratings []float64
		want    float64
	}{
		{"no observations", nil, 0},
		{"all minimum", []float64{1, 1, 1}, 0},
		{"all maximum", []float64{5, 5}, 100},
		{"midpoint", []float64{3}, 50},
		{"rounded average", []float64{4, 5}, 88}, // avg 4.5 → 87.5 → 88
		{"mixed", []float64{2, 4}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TraitScore(tt.ratings); got != tt.want {
				t.Errorf("TraitScore(%v) = %v, want %v", tt.ratings, got, tt.want)
			}
		})
	}
}

func TestBuildTraitProfileEmitsFullTaxonomy(t *testing.T) {
	ratings := map[string][]float64{
		"dominance": {5, 5},
		"influence": {2},
	}

	profile := BuildTraitProfile(model.ModuleTypeDISC, ratings)
	if len(profile) != 4 {
		t.Fatalf("profile has %d entries, want the full DISC taxonomy of 4", len(profile))
	}

	byTrait := make(map[string]model.TraitScore, len(profile))
	for _, ts := range profile {
		byTrait[ts.Trait] = ts
	}

	if got := byTrait["dominance"]; got.Score != 100 || got.RatingCount != 2 {
		t.Errorf("dominance = %+v, want score 100 count 2", got)
	}
	if got := byTrait["influence"]; got.Score != 25 || got.RatingCount != 1 {
		t.Errorf("influence = %+v, want score 25 count 1", got)
	}
	// Unobserved taxonomy entries still appear, scored zero.
	if got := byTrait["steadiness"]; got.Score != 0 || got.RatingCount != 0 {
		t.Errorf("steadiness = %+v, want zero entry", got)
	}
	if got := byTrait["compliance"]; got.Score != 0 || got.RatingCount != 0 {
		t.Errorf("compliance = %+v, want zero entry", got)
	}
}

func TestBuildTraitProfileAppendsExtras(t *testing.T) {
	ratings := map[string][]float64{
		"zeal":      {3},
		"ambition":  {4},
		"dominance": {5},
	}

	profile := BuildTraitProfile(model.ModuleTypeDISC, ratings)
	if len(profile) != 6 {
		t.Fatalf("profile has %d entries, want 4 taxonomy + 2 extras", len(profile))
	}
	// Extras follow the taxonomy, sorted by name.
	if profile[4].Trait != "ambition" || profile[5].Trait != "zeal" {
		t.Errorf("extras = %q, %q, want ambition then zeal", profile[4].Trait, profile[5].Trait)
	}
}

func TestDominantTrait(t *testing.T) {
	profile := []model.TraitScore{
		{Trait: "dominance", Score: 40, RatingCount: 2},
		{Trait: "influence", Score: 75, RatingCount: 3},
		{Trait: "steadiness", Score: 75, RatingCount: 1},
	}

	dominant := DominantTrait(profile)
	if dominant == nil {
		t.Fatal("DominantTrait returned nil for a non-empty profile")
	}
	// A tie resolves to the earlier entry.
	if dominant.Trait != "influence" {
		t.Errorf("dominant = %q, want influence", dominant.Trait)
	}

	if DominantTrait(nil) != nil {
		t.Error("DominantTrait(nil) should be nil")
	}
}
