package nudity

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/NeuralTrust/ImageGuard/pkg/detectors"
	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Backend  string        `mapstructure:"backend"`
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	MinScore float64       `mapstructure:"min_score"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type detector struct {
	backend  Backend
	breaker  httpx.CircuitBreaker
	minScore float64
	logger   *logrus.Logger
}

func NewDetector(logger *logrus.Logger, backend Backend, breaker httpx.CircuitBreaker, minScore float64) detectors.Detector {
	if minScore <= 0 {
		minScore = backend.DefaultMinScore()
	}
	return &detector{
		backend:  backend,
		breaker:  breaker,
		minScore: minScore,
		logger:   logger,
	}
}

func (d *detector) Name() string {
	return moderation.AgentNudity
}

func (d *detector) Detect(ctx context.Context, imagePath string) (*moderation.DetectorResult, error) {
	if _, err := os.Stat(filepath.Clean(imagePath)); err != nil {
		return moderation.NewErrorResult(moderation.KindStructured, fmt.Sprintf("Image not found at: %s", imagePath)), nil
	}
	image, err := providers.LoadImage(imagePath)
	if err != nil {
		return moderation.NewErrorResult(moderation.KindStructured, err.Error()), nil
	}

	var verdict *Verdict
	classify := func() error {
		var err error
		verdict, err = d.backend.Classify(ctx, image)
		return err
	}
	if d.breaker != nil {
		err = d.breaker.Execute(classify)
	} else {
		err = classify()
	}
	if err != nil {
		d.logger.WithError(err).WithField("backend", d.backend.Name()).Warn("nudity classification failed")
		return moderation.NewErrorResult(moderation.KindStructured, err.Error()), nil
	}

	result := d.evaluate(verdict)
	result.Provider = d.backend.Name()
	return result, nil
}

func (d *detector) evaluate(v *Verdict) *moderation.DetectorResult {
	var kept []moderation.Detection
	for _, det := range v.Detections {
		if scoreOf(det) >= d.minScore {
			kept = append(kept, det)
		}
	}

	if len(kept) == 0 && !v.Flagged {
		return moderation.NewStructuredResult(moderation.NudityLabelSafe, nil, "No nudity or explicit content detected.")
	}
	if len(kept) == 0 {
		return moderation.NewStructuredResult(moderation.NudityLabelUnsafe, nil, "Flagged as sexual content by the moderation model.")
	}

	parts := make([]string, 0, len(kept))
	for _, det := range kept {
		parts = append(parts, fmt.Sprintf("%s (%.2f)", det.Label, scoreOf(det)))
	}
	explanation := fmt.Sprintf("Detected %d explicit region(s): %s", len(kept), strings.Join(parts, ", "))
	return moderation.NewStructuredResult(moderation.NudityLabelUnsafe, kept, explanation)
}

func scoreOf(d moderation.Detection) float64 {
	if d.Score == nil {
		return 0
	}
	return *d.Score
}
