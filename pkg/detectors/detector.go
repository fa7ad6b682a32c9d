package detectors

import (
	"context"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
)

// Detector wraps one external classifier. Modeled failures (a model refusal,
// an unreachable service) come back as a result with status error; a returned
// Go error means something unexpected happened and aborts the run.
type Detector interface {
	Name() string
	Detect(ctx context.Context, imagePath string) (*moderation.DetectorResult, error)
}

// Ingestor validates and normalizes an image before any detector sees it.
type Ingestor interface {
	Preprocess(ctx context.Context, imagePath string) (*moderation.DetectorResult, error)
}

// Set holds one detector per pipeline step after ingestion.
type Set struct {
	Nudity          Detector
	NudityException Detector
	Violence        Detector
	Drugs           Detector
	AlcoholSmoking  Detector
	Hate            Detector
	PIIText         Detector
	QRCode          Detector
}

// ByName returns the detectors keyed by report name.
func (s Set) ByName() map[string]Detector {
	return map[string]Detector{
		moderation.AgentNudity:          s.Nudity,
		moderation.AgentNudityException: s.NudityException,
		moderation.AgentViolence:        s.Violence,
		moderation.AgentDrugs:           s.Drugs,
		moderation.AgentAlcoholSmoking:  s.AlcoholSmoking,
		moderation.AgentHate:            s.Hate,
		moderation.AgentPIIText:         s.PIIText,
		moderation.AgentQRCode:          s.QRCode,
	}
}
