package config

import (
	"fmt"

	"github.com/NeuralTrust/ImageGuard/pkg/detectors/vision"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers"
)

// ProviderConfig holds the credentials and default model of one provider.
type ProviderConfig struct {
	Credentials providers.Credentials `mapstructure:"credentials"`
	Model       string                `mapstructure:"model"`
}

// ProvidersConfig is the content of providers.yaml.
type ProvidersConfig struct {
	Providers map[string]ProviderConfig `mapstructure:"providers"`
}

// VisionConfig resolves the effective settings for a vision detector.
// Per-detector overrides win over the detector defaults, which win over the
// provider's default model. Credentials always come from providers.yaml.
func (c *Config) VisionConfig(name string) (vision.Config, error) {
	override := c.Detectors.Vision[name]

	provider := override.Provider
	if provider == "" {
		provider = c.Detectors.Provider
	}
	pc, ok := c.Providers.Providers[provider]
	if !ok {
		return vision.Config{}, fmt.Errorf("detector %s: provider %q is not configured", name, provider)
	}

	settings := providers.Config{
		Credentials: pc.Credentials,
		Model:       pc.Model,
		MaxTokens:   c.Detectors.MaxTokens,
		Temperature: c.Detectors.Temperature,
	}
	if c.Detectors.Model != "" && override.Provider == "" {
		settings.Model = c.Detectors.Model
	}
	if o := override.Settings; o != nil {
		if o.Model != "" {
			settings.Model = o.Model
		}
		if o.MaxTokens > 0 {
			settings.MaxTokens = o.MaxTokens
		}
		if o.Temperature > 0 {
			settings.Temperature = o.Temperature
		}
		settings.SystemPrompt = o.SystemPrompt
		settings.Instructions = o.Instructions
	}

	return vision.Config{
		Provider: provider,
		Prompt:   override.Prompt,
		Settings: &settings,
	}, nil
}
