// Package vision asks a multimodal model a moderation question about an
// image and returns its free-text verdict.
package vision

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/NeuralTrust/ImageGuard/pkg/detectors"
	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers"
	"github.com/sirupsen/logrus"
)

const NoClearResponse = "No clear response from the model."

//go:embed prompts/*.txt
var promptFS embed.FS

// DefaultPrompt returns the built-in prompt for a detector name.
func DefaultPrompt(name string) (string, error) {
	data, err := promptFS.ReadFile("prompts/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("no built-in prompt for %s", name)
	}
	return string(data), nil
}

type Config struct {
	Provider string            `mapstructure:"provider"`
	Prompt   string            `mapstructure:"prompt"`
	Settings *providers.Config `mapstructure:"settings"`
}

type detector struct {
	name     string
	provider string
	prompt   string
	client   providers.Client
	settings providers.Config
	logger   *logrus.Logger
}

// NewDetector falls back to the embedded prompt for name when cfg.Prompt is
// empty.
func NewDetector(logger *logrus.Logger, name string, client providers.Client, cfg Config) (detectors.Detector, error) {
	if client == nil {
		return nil, fmt.Errorf("%s: provider client is required", name)
	}
	prompt := strings.TrimSpace(cfg.Prompt)
	if prompt == "" {
		p, err := DefaultPrompt(name)
		if err != nil {
			return nil, err
		}
		prompt = strings.TrimSpace(p)
	}
	d := &detector{
		name:     name,
		provider: cfg.Provider,
		prompt:   prompt,
		client:   client,
		logger:   logger,
	}
	if cfg.Settings != nil {
		d.settings = *cfg.Settings
	}
	return d, nil
}

func (d *detector) Name() string {
	return d.name
}

func (d *detector) Detect(ctx context.Context, imagePath string) (*moderation.DetectorResult, error) {
	image, err := providers.LoadImage(imagePath)
	if err != nil {
		return moderation.NewErrorResult(moderation.KindText, err.Error()), nil
	}

	settings := d.settings
	start := time.Now()
	resp, err := d.client.Ask(ctx, &settings, d.prompt, image)
	if err != nil {
		d.logger.WithError(err).WithField("detector", d.name).Warn("vision request failed")
		return moderation.NewErrorResult(moderation.KindText, err.Error()), nil
	}

	text := strings.TrimSpace(resp.Response)
	if text == "" {
		text = NoClearResponse
	}
	d.logger.WithFields(logrus.Fields{
		"detector": d.name,
		"model":    resp.Model,
		"tokens":   resp.Usage.Complete().TotalTokens,
		"duration": time.Since(start).String(),
	}).Debug("vision verdict received")

	result := moderation.NewTextResult(d.prompt, text)
	result.Provider = d.provider
	result.Model = resp.Model
	return result, nil
}

// TextDetectorNames lists the detectors answered by a vision prompt.
func TextDetectorNames() []string {
	return []string{
		moderation.AgentNudityException,
		moderation.AgentViolence,
		moderation.AgentDrugs,
		moderation.AgentAlcoholSmoking,
		moderation.AgentHate,
		moderation.AgentPIIText,
		moderation.AgentQRCode,
	}
}
