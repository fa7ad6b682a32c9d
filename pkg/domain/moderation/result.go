package moderation

import (
	"errors"
	"fmt"
)

type ResultKind string

const (
	KindIngestion  ResultKind = "ingestion"
	KindText       ResultKind = "text"
	KindStructured ResultKind = "structured"
)

const (
	NudityLabelSafe   = "safe"
	NudityLabelUnsafe = "unsafe"
)

type Detection struct {
	Label string    `json:"label"`
	Score *float64  `json:"score,omitempty"`
	Box   []float64 `json:"box,omitempty"`
}

func NewDetection(label string, score float64, box []float64) Detection {
	return Detection{Label: label, Score: &score, Box: box}
}

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

type ProcessedImage struct {
	OutputPath   string            `json:"output_path"`
	OriginalSize Size              `json:"original_size"`
	NewSize      Size              `json:"new_size"`
	Format       string            `json:"format"`
	Fingerprint  string            `json:"fingerprint,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// DetectorResult is the uniform output of a detector adapter. Kind selects
// which payload is populated; error results carry only Message.
type DetectorResult struct {
	Kind    ResultKind `json:"kind"`
	Status  Status     `json:"status"`
	Message string     `json:"message,omitempty"`

	Prompt   string `json:"prompt,omitempty"`
	Text     string `json:"response_text,omitempty"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`

	Label       string      `json:"label,omitempty"`
	Detections  []Detection `json:"violations,omitempty"`
	UnsafeScore *float64    `json:"unsafe_score,omitempty"`
	Explanation string      `json:"explanation,omitempty"`

	// Ingestion fields are promoted to the top level of the serialized result.
	*ProcessedImage
}

func NewTextResult(prompt, text string) *DetectorResult {
	return &DetectorResult{
		Kind:   KindText,
		Status: StatusSuccess,
		Prompt: prompt,
		Text:   text,
	}
}

func NewStructuredResult(label string, detections []Detection, explanation string) *DetectorResult {
	r := &DetectorResult{
		Kind:        KindStructured,
		Status:      StatusSuccess,
		Label:       label,
		Detections:  detections,
		Explanation: explanation,
	}
	if len(detections) > 0 {
		best := 0.0
		for _, d := range detections {
			if d.Score != nil && *d.Score > best {
				best = *d.Score
			}
		}
		r.UnsafeScore = &best
	}
	return r
}

func NewIngestionResult(image *ProcessedImage) *DetectorResult {
	return &DetectorResult{
		Kind:           KindIngestion,
		Status:         StatusSuccess,
		ProcessedImage: image,
	}
}

func NewErrorResult(kind ResultKind, message string) *DetectorResult {
	return &DetectorResult{
		Kind:    kind,
		Status:  StatusError,
		Message: message,
	}
}

func (r *DetectorResult) Succeeded() bool {
	return r != nil && r.Status == StatusSuccess
}

// ResponseText returns the free-text verdict, or "" for any other variant.
func (r *DetectorResult) ResponseText() string {
	if r == nil || r.Kind != KindText || r.Status != StatusSuccess {
		return ""
	}
	return r.Text
}

func (r *DetectorResult) Validate() error {
	if r == nil {
		return errors.New("detector result is nil")
	}
	switch r.Status {
	case StatusSuccess:
		if r.Message != "" {
			return errors.New("message is only allowed on error results")
		}
	case StatusError:
		if r.Text != "" || len(r.Detections) > 0 || r.ProcessedImage != nil {
			return errors.New("error results must not carry a payload")
		}
		return nil
	default:
		return fmt.Errorf("unknown status %q", r.Status)
	}

	switch r.Kind {
	case KindText:
		if len(r.Detections) > 0 || r.Label != "" || r.ProcessedImage != nil {
			return errors.New("text result carries a foreign payload")
		}
	case KindStructured:
		// An absent label counts as not unsafe.
		if r.Label != "" && r.Label != NudityLabelSafe && r.Label != NudityLabelUnsafe {
			return fmt.Errorf("structured result has invalid label %q", r.Label)
		}
		if r.Text != "" || r.ProcessedImage != nil {
			return errors.New("structured result carries a foreign payload")
		}
	case KindIngestion:
		if r.ProcessedImage == nil || r.ProcessedImage.OutputPath == "" {
			return errors.New("ingestion result is missing output_path")
		}
		if r.Text != "" || len(r.Detections) > 0 {
			return errors.New("ingestion result carries a foreign payload")
		}
	default:
		return fmt.Errorf("unknown result kind %q", r.Kind)
	}
	return nil
}
