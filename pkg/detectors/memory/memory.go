// Package memory provides static detectors for tests and dry runs.
package memory

import (
	"context"
	"sync/atomic"

	"github.com/NeuralTrust/ImageGuard/pkg/detectors"
	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
)

type DetectFunc func(ctx context.Context, imagePath string) (*moderation.DetectorResult, error)

type Detector struct {
	name  string
	fn    DetectFunc
	calls atomic.Int64
}

func NewDetector(name string, fn DetectFunc) *Detector {
	return &Detector{name: name, fn: fn}
}

// NewTextDetector always answers with the same verdict.
func NewTextDetector(name, text string) *Detector {
	return NewDetector(name, func(context.Context, string) (*moderation.DetectorResult, error) {
		return moderation.NewTextResult("", text), nil
	})
}

// NewNudityDetector reports unsafe when scores are given, safe otherwise.
func NewNudityDetector(scores ...float64) *Detector {
	return NewDetector(moderation.AgentNudity, func(context.Context, string) (*moderation.DetectorResult, error) {
		if len(scores) == 0 {
			return moderation.NewStructuredResult(moderation.NudityLabelSafe, nil, "no nudity detected"), nil
		}
		detections := make([]moderation.Detection, len(scores))
		for i, s := range scores {
			detections[i] = moderation.NewDetection("EXPOSED", s, nil)
		}
		return moderation.NewStructuredResult(moderation.NudityLabelUnsafe, detections, "static detections"), nil
	})
}

func NewFailingDetector(name string, kind moderation.ResultKind, message string) *Detector {
	return NewDetector(name, func(context.Context, string) (*moderation.DetectorResult, error) {
		return moderation.NewErrorResult(kind, message), nil
	})
}

func (d *Detector) Name() string {
	return d.name
}

func (d *Detector) Detect(ctx context.Context, imagePath string) (*moderation.DetectorResult, error) {
	d.calls.Add(1)
	return d.fn(ctx, imagePath)
}

func (d *Detector) Calls() int {
	return int(d.calls.Load())
}

type Ingestor struct {
	result *moderation.DetectorResult
	err    error
}

// NewIngestor passes images through untouched.
func NewIngestor() *Ingestor {
	return &Ingestor{}
}

func NewFailingIngestor(message string) *Ingestor {
	return &Ingestor{result: moderation.NewErrorResult(moderation.KindIngestion, message)}
}

// NewBrokenIngestor fails with a Go error instead of an error result.
func NewBrokenIngestor(err error) *Ingestor {
	return &Ingestor{err: err}
}

func (i *Ingestor) Preprocess(_ context.Context, imagePath string) (*moderation.DetectorResult, error) {
	if i.result != nil || i.err != nil {
		return i.result, i.err
	}
	return moderation.NewIngestionResult(&moderation.ProcessedImage{
		OutputPath: imagePath,
		Format:     "PNG",
	}), nil
}

// NewSafeSet returns detectors that all report a clean image.
func NewSafeSet() detectors.Set {
	return detectors.Set{
		Nudity:          NewNudityDetector(),
		NudityException: NewTextDetector(moderation.AgentNudityException, "NO"),
		Violence:        NewTextDetector(moderation.AgentViolence, "NO"),
		Drugs:           NewTextDetector(moderation.AgentDrugs, "NO"),
		AlcoholSmoking:  NewTextDetector(moderation.AgentAlcoholSmoking, "NO"),
		Hate:            NewTextDetector(moderation.AgentHate, "NO"),
		PIIText:         NewTextDetector(moderation.AgentPIIText, "NO"),
		QRCode:          NewTextDetector(moderation.AgentQRCode, "NO"),
	}
}
