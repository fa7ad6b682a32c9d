package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/telemetry"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/mitchellh/mapstructure"
)

const (
	ExporterName = "kafka"
	closeFlush   = 5 * time.Second
)

type Config struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Topic    string `mapstructure:"topic"`
	ClientID string `mapstructure:"client_id"`
	// Acks is passed through to librdkafka; "all" when unset.
	Acks string `mapstructure:"acks"`
}

func (c Config) bootstrap() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func decodeConfig(settings map[string]interface{}) (Config, error) {
	conf := Config{ClientID: "imageguard", Acks: "all"}
	if err := mapstructure.Decode(settings, &conf); err != nil {
		return conf, fmt.Errorf("invalid kafka settings: %w", err)
	}
	switch {
	case conf.Host == "":
		return conf, errors.New("kafka host is required")
	case conf.Port == "":
		return conf, errors.New("kafka port is required")
	case conf.Topic == "":
		return conf, errors.New("kafka topic is required")
	}
	return conf, nil
}

// Producer is the part of *kafka.Producer the exporter needs.
type Producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

type ProducerFactory func(conf Config) (Producer, error)

// Exporter publishes one message per decision, keyed by report ID so every
// event of a report lands on the same partition.
type Exporter struct {
	cfg         Config
	producer    Producer
	newProducer ProducerFactory
}

func NewKafkaExporter() *Exporter {
	return NewKafkaExporterWithFactory(dialConfluent)
}

func NewKafkaExporterWithFactory(factory ProducerFactory) *Exporter {
	return &Exporter{newProducer: factory}
}

func dialConfluent(conf Config) (Producer, error) {
	return kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": conf.bootstrap(),
		"client.id":         conf.ClientID,
		"acks":              conf.Acks,
	})
}

func (e *Exporter) Name() string {
	return ExporterName
}

func (e *Exporter) ValidateConfig(settings map[string]interface{}) error {
	_, err := decodeConfig(settings)
	return err
}

func (e *Exporter) WithSettings(settings map[string]interface{}) (telemetry.Exporter, error) {
	conf, err := decodeConfig(settings)
	if err != nil {
		return nil, err
	}
	producer, err := e.newProducer(conf)
	if err != nil {
		return nil, fmt.Errorf("kafka producer for %s: %w", conf.bootstrap(), err)
	}
	return &Exporter{cfg: conf, producer: producer, newProducer: e.newProducer}, nil
}

func (e *Exporter) Handle(ctx context.Context, evt *telemetry.DecisionEvent) error {
	if e.producer == nil {
		return errors.New("kafka exporter not initialized, call WithSettings first")
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode decision event: %w", err)
	}

	delivered := make(chan kafka.Event, 1)
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &e.cfg.Topic, Partition: kafka.PartitionAny},
		Key:            []byte(evt.ReportID),
		Value:          payload,
		Timestamp:      evt.EmittedAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(evt.Type)},
			{Key: "decision", Value: []byte(evt.Decision)},
		},
	}
	if err := e.producer.Produce(msg, delivered); err != nil {
		return fmt.Errorf("produce to %s: %w", e.cfg.Topic, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case ev := <-delivered:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event %T", ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("delivery failed: %w", m.TopicPartition.Error)
		}
		return nil
	}
}

// Close waits for in-flight messages before tearing the producer down.
func (e *Exporter) Close() {
	if e.producer == nil {
		return
	}
	e.producer.Flush(int(closeFlush.Milliseconds()))
	e.producer.Close()
}
