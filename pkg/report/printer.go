package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
)

const (
	heavyRule = "================================================================================"
	lightRule = "--------------------------------------------------------------------------------"
	maxText   = 100
)

// Print writes a human readable summary of the report.
func Print(w io.Writer, r *moderation.Report) {
	p := printer{w: w}

	p.line("")
	p.line(heavyRule)
	p.line("IMAGE MODERATION REPORT")
	p.line(heavyRule)
	p.line("Image Path: %s", r.ImagePath)
	p.line("Status: %s", r.Status)
	p.line("Final Decision: %s", r.FinalDecision)
	if r.Rationale != "" {
		p.line("Rationale: %s", r.Rationale)
	}
	if r.ErrorMessage != "" {
		p.line("Error: %s", r.ErrorMessage)
	}
	if len(r.Violations) > 0 {
		p.line("Detected Violations: %s", strings.Join(r.Violations.Strings(), ", "))
	} else {
		p.line("No violations detected")
	}

	p.line("")
	p.line(lightRule)
	p.line("DETAILED AGENT RESULTS")
	p.line(lightRule)
	for _, agent := range moderation.AgentNames() {
		result, ok := r.AgentResults[agent]
		if !ok || result == nil {
			continue
		}
		p.line("")
		p.line("%s", strings.ToUpper(agent))
		p.line("   Status: %s", result.Status)
		if c, ok := r.ConfidenceScores[agent]; ok {
			p.line("   Confidence: %.2f", float64(c))
		}
		if result.Status == moderation.StatusError {
			p.line("   Message: %s", result.Message)
			continue
		}
		switch result.Kind {
		case moderation.KindStructured:
			p.line("   Label: %s", result.Label)
			if result.Explanation != "" {
				p.line("   Explanation: %s", result.Explanation)
			}
		case moderation.KindIngestion:
			p.line("   Original Size: %s", result.ProcessedImage.OriginalSize)
			p.line("   New Size: %s", result.ProcessedImage.NewSize)
			p.line("   Format: %s", result.ProcessedImage.Format)
		default:
			p.line("   Response: %s", truncate(result.Text))
		}
	}

	p.line("")
	p.line(lightRule)
	p.line("CONFIDENCE SCORES")
	p.line(lightRule)
	for _, agent := range moderation.AgentNames() {
		if c, ok := r.ConfidenceScores[agent]; ok {
			p.line("   %s: %.2f", agent, float64(c))
		}
	}
	p.line("")
	p.line(heavyRule)
}

// Letter is the one-letter code used in batch result sheets.
func Letter(r *moderation.Report) string {
	if r == nil {
		return "Error"
	}
	switch r.FinalDecision {
	case moderation.DecisionAccept:
		return "A"
	case moderation.DecisionReject:
		return "R"
	case moderation.DecisionFlag:
		return "F"
	default:
		return "Error"
	}
}

type printer struct {
	w io.Writer
}

func (p printer) line(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxText {
		return s
	}
	return string(runes[:maxText]) + "..."
}
