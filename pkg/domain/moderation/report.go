package moderation

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResultsJSON map[string]*DetectorResult

type ScoresJSON map[string]Confidence

// Report is the single artifact produced by one pipeline run. It is owned
// by the run that created it and must not be shared across runs.
type Report struct {
	ID               uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	Status           Status       `json:"status"`
	ImagePath        string       `json:"image_path"`
	FinalDecision    Decision     `json:"final_decision" gorm:"index"`
	Violations       ViolationSet `json:"violations" gorm:"type:jsonb"`
	AgentResults     ResultsJSON  `json:"agent_results" gorm:"type:jsonb"`
	ConfidenceScores ScoresJSON   `json:"confidence_scores" gorm:"type:jsonb"`
	DetailedReport   ResultsJSON  `json:"detailed_report" gorm:"type:jsonb"`
	ErrorMessage     string       `json:"error_message,omitempty"`
	Rationale        string       `json:"rationale,omitempty"`
	Fingerprint      string       `json:"fingerprint,omitempty" gorm:"index"`
	CreatedAt        time.Time    `json:"created_at"`
}

func (Report) TableName() string {
	return "moderation_reports"
}

// NewReport returns an empty successful report that accepts the image until
// a stage says otherwise. Every detector has a detailed_report slot.
func NewReport(imagePath string, createdAt time.Time) *Report {
	detailed := make(ResultsJSON, len(AgentNames()))
	for _, name := range AgentNames() {
		detailed[name] = nil
	}
	return &Report{
		Status:           StatusSuccess,
		ImagePath:        imagePath,
		FinalDecision:    DecisionAccept,
		Violations:       NewViolationSet(),
		AgentResults:     make(ResultsJSON),
		ConfidenceScores: make(ScoresJSON),
		DetailedReport:   detailed,
		CreatedAt:        createdAt,
	}
}

// Record stores a detector's raw result under its name.
func (r *Report) Record(agent string, result *DetectorResult) {
	r.AgentResults[agent] = result
	r.DetailedReport[agent] = result
}

func (r *Report) Score(agent string, c Confidence) {
	r.ConfidenceScores[agent] = c
}

// Fail marks the run as aborted by an unexpected failure.
func (r *Report) Fail(err error) {
	r.Status = StatusError
	r.FinalDecision = DecisionReject
	r.Violations.Add(LabelPipelineError)
	r.ErrorMessage = err.Error()
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return r.Validate()
}

func (r *Report) Validate() error {
	if r.ImagePath == "" {
		return fmt.Errorf("image_path is required")
	}
	switch r.FinalDecision {
	case DecisionAccept, DecisionFlag, DecisionReject:
	default:
		return fmt.Errorf("invalid final_decision %q", r.FinalDecision)
	}
	if r.Status == StatusError && r.FinalDecision != DecisionReject {
		return fmt.Errorf("failed runs must be rejected")
	}
	return nil
}

func (m ResultsJSON) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *ResultsJSON) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("expected []byte, got %T", value)
	}
	return json.Unmarshal(bytes, m)
}

func (m ScoresJSON) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *ScoresJSON) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("expected []byte, got %T", value)
	}
	return json.Unmarshal(bytes, m)
}
