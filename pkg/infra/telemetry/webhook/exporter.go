package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/telemetry"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/httpx"
	"github.com/mitchellh/mapstructure"
)

const (
	ExporterName = "webhook"
	tokenHeader  = "Token"
)

type Config struct {
	Url   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

// Exporter posts each decision event as JSON to a URL.
type Exporter struct {
	cfg     Config
	breaker httpx.CircuitBreaker
	client  httpx.Client
}

func NewWebhookExporter(client httpx.Client) *Exporter {
	return &Exporter{client: client}
}

func (p *Exporter) Name() string {
	return ExporterName
}

func (p *Exporter) ValidateConfig(settings map[string]interface{}) error {
	var conf Config
	if err := mapstructure.Decode(settings, &conf); err != nil {
		return fmt.Errorf("invalid webhook config: %w", err)
	}
	if conf.Url == "" {
		return errors.New("webhook url is required")
	}
	return nil
}

func (p *Exporter) WithSettings(settings map[string]interface{}) (telemetry.Exporter, error) {
	var conf Config
	if err := mapstructure.Decode(settings, &conf); err != nil {
		return nil, fmt.Errorf("invalid webhook config: %w", err)
	}
	return &Exporter{
		cfg:     conf,
		client:  p.client,
		breaker: httpx.NewCircuitBreaker(ExporterName, 30*time.Second, 5),
	}, nil
}

func (p *Exporter) Handle(ctx context.Context, evt *telemetry.DecisionEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.breaker.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create HTTP request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if p.cfg.Token != "" {
			req.Header.Set(tokenHeader, p.cfg.Token)
		}

		res, err := p.client.Do(req)
		if err != nil {
			return fmt.Errorf("webhook request failed: %w", err)
		}
		defer res.Body.Close()
		if _, err := io.Copy(io.Discard, res.Body); err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}
		if res.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("webhook returned status code %d", res.StatusCode)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("webhook call failed: %w", err)
	}
	return nil
}

func (p *Exporter) Close() {}
