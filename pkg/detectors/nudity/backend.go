// Package nudity classifies explicit content through a remote detection
// service and reports it as a structured safe/unsafe result.
package nudity

import (
	"context"
	"fmt"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers"
	"github.com/valyala/fasthttp"
)

const (
	BackendNudeNet = "nudenet"
	BackendOpenAI  = "openai"
)

// Verdict is what a backend saw. Flagged forces an unsafe label whatever
// the scores are.
type Verdict struct {
	Detections []moderation.Detection
	Flagged    bool
}

type Backend interface {
	Name() string
	// DefaultMinScore is used when the configured threshold is unset.
	DefaultMinScore() float64
	Classify(ctx context.Context, image *providers.Image) (*Verdict, error)
}

// NewBackend picks the backend named in cfg.
func NewBackend(cfg Config, fastClient *fasthttp.Client, httpClient httpx.Client) (Backend, error) {
	switch cfg.Backend {
	case BackendNudeNet, "":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("nudenet endpoint is required")
		}
		return NewNudeNetBackend(fastClient, cfg.Endpoint, cfg.Timeout), nil
	case BackendOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai moderation requires an api key")
		}
		return NewOpenAIBackend(httpClient, cfg.APIKey, cfg.Endpoint, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported nudity backend: %s", cfg.Backend)
	}
}
