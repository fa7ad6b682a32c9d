package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/telemetry"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/cache"
	"github.com/mitchellh/mapstructure"
)

const (
	ExporterName   = "redis"
	DefaultChannel = "imageguard:decisions"
)

// Message is the envelope published on the channel.
type Message struct {
	Type  string          `json:"type"`
	Event json.RawMessage `json:"event"`
}

type Config struct {
	Channel string `mapstructure:"channel"`
}

type Exporter struct {
	client  cache.Client
	channel string
}

func NewRedisExporter(client cache.Client) *Exporter {
	return &Exporter{client: client, channel: DefaultChannel}
}

func (e *Exporter) Name() string {
	return ExporterName
}

func (e *Exporter) ValidateConfig(settings map[string]interface{}) error {
	var conf Config
	if err := mapstructure.Decode(settings, &conf); err != nil {
		return fmt.Errorf("invalid redis exporter config: %w", err)
	}
	if e.client == nil {
		return errors.New("redis exporter requires a redis connection")
	}
	return nil
}

func (e *Exporter) WithSettings(settings map[string]interface{}) (telemetry.Exporter, error) {
	var conf Config
	if err := mapstructure.Decode(settings, &conf); err != nil {
		return nil, fmt.Errorf("invalid redis exporter config: %w", err)
	}
	channel := conf.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	return &Exporter{client: e.client, channel: channel}, nil
}

func (e *Exporter) Handle(ctx context.Context, evt *telemetry.DecisionEvent) error {
	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	data, err := json.Marshal(Message{Type: evt.Type, Event: b})
	if err != nil {
		return err
	}
	return e.client.RedisClient().Publish(ctx, e.channel, string(data)).Err()
}

func (e *Exporter) Close() {}
