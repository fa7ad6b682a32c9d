package telemetry

import (
	"time"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
)

const DecisionEventType = "moderation.decision"

// DecisionEvent is the compact form of a report sent to exporters. Detector
// transcripts are left out.
type DecisionEvent struct {
	Type         string                           `json:"type"`
	ReportID     string                           `json:"report_id"`
	ImagePath    string                           `json:"image_path"`
	Fingerprint  string                           `json:"fingerprint,omitempty"`
	Status       moderation.Status                `json:"status"`
	Decision     moderation.Decision              `json:"final_decision"`
	Violations   []string                         `json:"violations"`
	Scores       map[string]moderation.Confidence `json:"confidence_scores"`
	ErrorMessage string                           `json:"error_message,omitempty"`
	CreatedAt    time.Time                        `json:"created_at"`
	EmittedAt    time.Time                        `json:"emitted_at"`
}

func NewDecisionEvent(report *moderation.Report, emittedAt time.Time) *DecisionEvent {
	scores := make(map[string]moderation.Confidence, len(report.ConfidenceScores))
	for agent, c := range report.ConfidenceScores {
		scores[agent] = c
	}
	violations := report.Violations.Strings()
	if violations == nil {
		violations = []string{}
	}
	return &DecisionEvent{
		Type:         DecisionEventType,
		ReportID:     report.ID.String(),
		ImagePath:    report.ImagePath,
		Fingerprint:  report.Fingerprint,
		Status:       report.Status,
		Decision:     report.FinalDecision,
		Violations:   violations,
		Scores:       scores,
		ErrorMessage: report.ErrorMessage,
		CreatedAt:    report.CreatedAt,
		EmittedAt:    emittedAt,
	}
}
