package moderation

import (
	"strings"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
)

// ConfidenceTier describes one row of the confidence reference table.
type ConfidenceTier struct {
	Score       moderation.Confidence `json:"score"`
	Level       string                `json:"level"`
	Meaning     string                `json:"meaning"`
	Keywords    []string              `json:"keywords"`
	Explanation string                `json:"explanation"`
}

// matchingTiers are tested in order; the first tier with any keyword hit wins.
var matchingTiers = []ConfidenceTier{
	{
		Score:       moderation.ConfidenceVeryHigh,
		Level:       "Very High",
		Meaning:     "Agent is extremely confident in detection",
		Explanation: "Strong evidence for decision-making",
		Keywords: []string{
			"CLEARLY", "DEFINITELY", "CERTAINLY", "OBVIOUSLY",
			"UNDOUBTEDLY", "WITHOUT DOUBT", "CONFIRMED", "IDENTIFIED",
		},
	},
	{
		Score:       moderation.ConfidenceHigh,
		Level:       "High",
		Meaning:     "Agent detected violation with high certainty",
		Explanation: "Reliable detection, can be used for automated decisions",
		Keywords: []string{
			"YES", "VIOLATION", "DETECTED", "FOUND",
			"PRESENT", "SHOWS", "CONTAINS", "DISPLAYS",
		},
	},
	{
		Score:       moderation.ConfidenceMediumHigh,
		Level:       "Medium-High",
		Meaning:     "Agent thinks violation is likely",
		Explanation: "Good evidence, may need review",
		Keywords: []string{
			"LIKELY", "PROBABLY", "APPEARS", "SEEMS",
			"INDICATES", "SUGGESTS", "MIGHT BE",
		},
	},
	{
		Score:       moderation.ConfidenceMediumLow,
		Level:       "Medium-Low",
		Meaning:     "Agent is uncertain about detection",
		Explanation: "Weak evidence, likely false positive",
		Keywords: []string{
			"UNCERTAIN", "NOT CLEARLY", "MAYBE", "POSSIBLY",
			"MIGHT", "COULD BE", "UNSURE",
		},
	},
	{
		Score:       moderation.ConfidenceLow,
		Level:       "Low",
		Meaning:     "Agent found no violations",
		Explanation: "Strong evidence of safety",
		Keywords: []string{
			"NO", "NOT DETECTED", "CLEAN", "SAFE",
			"NONE FOUND", "ABSENT", "NOT PRESENT",
		},
	},
}

var neutralTier = ConfidenceTier{
	Score:       moderation.ConfidenceNeutral,
	Level:       "Medium",
	Meaning:     "Agent is uncertain or neutral",
	Explanation: "Neutral evidence, requires human review",
	Keywords:    []string{"No specific confidence indicators found"},
}

var errorTier = ConfidenceTier{
	Score:       moderation.ConfidenceNone,
	Level:       "Error",
	Meaning:     "Agent failed to process",
	Explanation: "No evidence available, manual review required",
	Keywords:    []string{"Agent error or no response"},
}

// ReferenceTable returns every confidence tier, highest score first.
func ReferenceTable() []ConfidenceTier {
	table := make([]ConfidenceTier, 0, len(matchingTiers)+2)
	for _, tier := range matchingTiers {
		if tier.Score < neutralTier.Score && (len(table) == 0 || table[len(table)-1].Score > neutralTier.Score) {
			table = append(table, neutralTier)
		}
		table = append(table, tier)
	}
	return append(table, errorTier)
}

// ExtractConfidence maps a free-text verdict to a confidence tier. Empty text
// means the detector produced no evidence and scores 0.0, while text that hits
// no tier is ambiguous and scores 0.5.
func ExtractConfidence(text string) moderation.Confidence {
	if text == "" {
		return moderation.ConfidenceNone
	}
	upper := strings.ToUpper(text)
	for _, tier := range matchingTiers {
		if containsAny(upper, tier.Keywords) {
			return tier.Score
		}
	}
	return moderation.ConfidenceNeutral
}

// NudityConfidence trusts the binary detector's own per-region scores.
func NudityConfidence(result *moderation.DetectorResult) moderation.Confidence {
	if !result.Succeeded() || result.Label != moderation.NudityLabelUnsafe {
		return moderation.ConfidenceLow
	}
	if len(result.Detections) == 0 {
		return moderation.ConfidenceVeryHigh
	}
	best := -1.0
	for _, d := range result.Detections {
		score := float64(moderation.ConfidenceNeutral)
		if d.Score != nil {
			score = *d.Score
		}
		if score > best {
			best = score
		}
	}
	return moderation.Confidence(best)
}

func containsAny(upper string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}
