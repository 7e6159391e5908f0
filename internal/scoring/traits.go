package scoring

import (
	"math"
	"sort"

	"github.com/katalis-id/psikotes-backend/internal/model"
)

// Fixed trait taxonomies per personality test class. Every entry is always
// emitted in a result's trait profile, even with zero observed ratings.
var (
	taxonomyDISC = []string{"dominance", "influence", "steadiness", "compliance"}

	taxonomyBigFive = []string{
		"openness", "conscientiousness", "extraversion", "agreeableness", "neuroticism",
	}

	taxonomyMBTI = []string{
		"extraversion_introversion", "sensing_intuition",
		"thinking_feeling", "judging_perceiving",
	}

	taxonomyEPPS = []string{
		"achievement", "deference", "order", "exhibition", "autonomy",
		"affiliation", "intraception", "succorance", "dominance", "abasement",
		"nurturance", "change", "endurance", "heterosexuality", "aggression",
	}
)

// Taxonomy returns the fixed trait list for a personality module type.
// Unknown personality categories get an empty taxonomy; observed traits are
// then emitted as-is in observation order.
func Taxonomy(moduleType model.ModuleType) []string {
	switch moduleType {
	case model.ModuleTypeDISC:
		return taxonomyDISC
	case model.ModuleTypeBigFive:
		return taxonomyBigFive
	case model.ModuleTypeMBTI:
		return taxonomyMBTI
	case model.ModuleTypeEPPS:
		return taxonomyEPPS
	}
	return nil
}

// TraitScore normalizes an average 1–5 rating onto a 0–100 scale:
// round(((avg − 1) / 4) × 100), clamped to [0,100]. Zero observations score 0.
func TraitScore(ratings []float64) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range ratings {
		sum += r
	}
	avg := sum / float64(len(ratings))
	score := math.Round((avg - 1) / 4 * 100)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// BuildTraitProfile assembles the complete trait profile for a module type.
// Every taxonomy entry appears exactly once, in taxonomy order; ratings for
// traits outside the taxonomy are appended after it so no observation is
// silently dropped.
func BuildTraitProfile(moduleType model.ModuleType, ratings map[string][]float64) []model.TraitScore {
	taxonomy := Taxonomy(moduleType)

	profile := make([]model.TraitScore, 0, len(taxonomy))
	seen := make(map[string]bool, len(taxonomy))

	for _, trait := range taxonomy {
		seen[trait] = true
		profile = append(profile, model.TraitScore{
			Trait:       trait,
			Score:       TraitScore(ratings[trait]),
			RatingCount: len(ratings[trait]),
		})
	}

	// Stable order for out-of-taxonomy traits: sort by name.
	extras := make([]string, 0)
	for trait, obs := range ratings {
		if trait == "" || seen[trait] || len(obs) == 0 {
			continue
		}
		extras = append(extras, trait)
	}
	sort.Strings(extras)
	for _, trait := range extras {
		profile = append(profile, model.TraitScore{
			Trait:       trait,
			Score:       TraitScore(ratings[trait]),
			RatingCount: len(ratings[trait]),
		})
	}

	return profile
}

// DominantTrait returns the highest-scoring trait of a profile; ties resolve
// to the earlier entry so the narrative stays deterministic.
func DominantTrait(profile []model.TraitScore) *model.TraitScore {
	var dominant *model.TraitScore
	for i := range profile {
		if dominant == nil || profile[i].Score > dominant.Score {
			dominant = &profile[i]
		}
	}
	return dominant
}
