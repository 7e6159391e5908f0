package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/katalis-id/psikotes-backend/internal/model"
)

// CognitiveSummary is the derived outcome of a cognitive test's answer set.
type CognitiveSummary struct {
	RawScore    float64
	ScaledScore float64
	Grade       string
	Percentile  float64
	IsPassed    bool
}

// Grade banding thresholds for cognitive tests. The D band floor equals the
// test's passing score so a D is always a pass.
const (
	gradeABound = 90
	gradeBBound = 80
	gradeCBound = 70
)

// BandGrade maps a scaled score (0–100) to the fixed A–E banding.
func BandGrade(scaled, passingScore float64) string {
	switch {
	case scaled >= gradeABound:
		return "A"
	case scaled >= gradeBBound:
		return "B"
	case scaled >= gradeCBound:
		return "C"
	case scaled >= passingScore:
		return "D"
	default:
		return "E"
	}
}

// SummarizeCognitive derives the cognitive outcome from the summed raw score
// of all scored answers.
//
//	scaled_score = rawScore / totalQuestions × 100
//	percentile   = min(100, scaled_score)
func SummarizeCognitive(rawScore float64, totalQuestions int, passingScore float64) CognitiveSummary {
	if passingScore <= 0 {
		passingScore = model.DefaultPassingScore
	}

	scaled := 0.0
	if totalQuestions > 0 {
		scaled = rawScore / float64(totalQuestions) * 100
	}
	scaled = math.Round(scaled*100) / 100

	return CognitiveSummary{
		RawScore:    rawScore,
		ScaledScore: scaled,
		Grade:       BandGrade(scaled, passingScore),
		Percentile:  math.Min(100, scaled),
		IsPassed:    scaled >= passingScore,
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Narrative text, deterministic given the same inputs
// ────────────────────────────────────────────────────────────────────────────

// CognitiveNarrative builds the human-readable description and
// recommendation for a cognitive result.
func CognitiveNarrative(s CognitiveSummary) (description, recommendation string) {
	var quality string
	switch s.Grade {
	case "A":
		quality = "sangat baik"
	case "B":
		quality = "baik"
	case "C":
		quality = "cukup"
	case "D":
		quality = "kurang"
	default:
		quality = "sangat kurang"
	}

	verdict := "tidak memenuhi"
	if s.IsPassed {
		verdict = "memenuhi"
	}

	description = fmt.Sprintf(
		"Skor akhir %.2f dari 100 (nilai %s, kategori %s). Hasil ini %s ambang kelulusan.",
		s.ScaledScore, s.Grade, quality, verdict,
	)

	if !s.IsPassed {
		recommendation = "Disarankan mengikuti pembinaan dan mengulang tes pada kesempatan berikutnya."
	} else if s.Grade == "A" {
		recommendation = "Kandidat sangat direkomendasikan untuk tahap seleksi berikutnya."
	} else {
		recommendation = "Kandidat direkomendasikan untuk tahap seleksi berikutnya."
	}
	return description, recommendation
}

// PersonalityNarrative builds the description for a personality result from
// the dominant rating bucket.
func PersonalityNarrative(moduleType model.ModuleType, profile []model.TraitScore, completion float64) (description, recommendation string) {
	dominant := DominantTrait(profile)
	if dominant == nil || dominant.RatingCount == 0 {
		description = fmt.Sprintf(
			"Profil %s belum dapat disimpulkan karena belum ada jawaban yang terekam (%.0f%% terjawab).",
			strings.ToUpper(string(moduleType)), completion,
		)
		return description, ""
	}

	description = fmt.Sprintf(
		"Profil %s dengan dimensi paling menonjol %q (skor %.0f dari 100, %.0f%% pertanyaan terjawab).",
		strings.ToUpper(string(moduleType)), dominant.Trait, dominant.Score, completion,
	)
	recommendation = fmt.Sprintf(
		"Hasil menunjukkan kecenderungan %s. Gunakan profil lengkap sebagai bahan wawancara lanjutan.",
		dominant.Trait,
	)
	return description, recommendation
}
