package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/NeuralTrust/ImageGuard/pkg/config"
	"github.com/NeuralTrust/ImageGuard/pkg/detectors/vision"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mainYAML = `
server:
  port: 9000
  local_root: /srv/images
ingestion:
  max_bytes: 1048576
pipeline:
  step_timeout: 5s
  retract_nudity_on_exception: true
telemetry:
  exporters:
    - name: kafka
      settings:
        host: broker
        port: "9092"
        topic: decisions
detectors:
  provider: gemini
  max_tokens: 256
  vision:
    hate:
      provider: openai
      prompt: "Is there hate? YES or NO"
  nudity:
    backend: openai
    min_score: 0.7
`

const providersYAML = `
providers:
  gemini:
    model: gemini-2.5-flash
    credentials:
      api_key: g-key
  openai:
    model: gpt-4o-mini
    credentials:
      api_key: o-key
`

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(mainYAML), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "providers.yaml"), []byte(providersYAML), 0600))
	return dir
}

func TestLoad(t *testing.T) {
	require.NoError(t, config.Load(writeConfig(t)))
	cfg := config.GetConfig()

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
	assert.Equal(t, "/srv/images", cfg.Server.LocalRoot)
	assert.Equal(t, int64(1<<20), cfg.Ingestion.MaxBytes)
	assert.Equal(t, 5*time.Second, cfg.Pipeline.StepTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Pipeline.CacheTTL)
	assert.True(t, cfg.Pipeline.RetractNudityOnException)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "openai", cfg.Detectors.Nudity.Backend)
	assert.InDelta(t, 0.7, cfg.Detectors.Nudity.MinScore, 1e-9)

	require.Len(t, cfg.Telemetry.Exporters, 1)
	assert.Equal(t, "kafka", cfg.Telemetry.Exporters[0].Name)
	assert.Equal(t, "decisions", cfg.Telemetry.Exporters[0].Settings["topic"])
	assert.Equal(t, "g-key", cfg.Providers.Providers["gemini"].Credentials.ApiKey)
}

func TestVisionConfig(t *testing.T) {
	require.NoError(t, config.Load(writeConfig(t)))
	cfg := config.GetConfig()

	violence, err := cfg.VisionConfig("violence")
	require.NoError(t, err)
	assert.Equal(t, "gemini", violence.Provider)
	assert.Equal(t, "gemini-2.5-flash", violence.Settings.Model)
	assert.Equal(t, 256, violence.Settings.MaxTokens)
	assert.Equal(t, "g-key", violence.Settings.Credentials.ApiKey)
	assert.Empty(t, violence.Prompt)

	hate, err := cfg.VisionConfig("hate")
	require.NoError(t, err)
	assert.Equal(t, "openai", hate.Provider)
	assert.Equal(t, "gpt-4o-mini", hate.Settings.Model)
	assert.Equal(t, "o-key", hate.Settings.Credentials.ApiKey)
	assert.Equal(t, "Is there hate? YES or NO", hate.Prompt)
}

func TestVisionConfig_UnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Detectors.Vision = map[string]vision.Config{
		"drugs": {Provider: "mistral", Settings: &providers.Config{Model: "x"}},
	}
	_, err := cfg.VisionConfig("drugs")
	assert.ErrorContains(t, err, `provider "mistral" is not configured`)
}

func TestLoad_MissingFile(t *testing.T) {
	err := config.Load(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.yaml not found")
}
