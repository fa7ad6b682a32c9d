package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ImageGuard/pkg/domain/telemetry"
	kafkaexporter "github.com/NeuralTrust/ImageGuard/pkg/infra/telemetry/kafka"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	messages    []*kafka.Message
	deliveryErr error
	produceErr  error
	flushed     bool
	closed      bool
}

func (f *fakeProducer) Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	if f.produceErr != nil {
		return f.produceErr
	}
	f.messages = append(f.messages, msg)
	delivered := *msg
	delivered.TopicPartition.Error = f.deliveryErr
	deliveryChan <- &delivered
	return nil
}

func (f *fakeProducer) Flush(int) int { f.flushed = true; return 0 }
func (f *fakeProducer) Close()        { f.closed = true }

var settings = map[string]interface{}{"host": "kafka", "port": "9092", "topic": "moderation-decisions"}

func sampleEvent() *telemetry.DecisionEvent {
	r := moderation.NewReport("img.png", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	r.FinalDecision = moderation.DecisionFlag
	r.Violations.Add(moderation.LabelAlcohol)
	return telemetry.NewDecisionEvent(r, time.Date(2025, 3, 1, 0, 0, 1, 0, time.UTC))
}

func TestExporter_ValidateConfig(t *testing.T) {
	exp := kafkaexporter.NewKafkaExporter()
	assert.NoError(t, exp.ValidateConfig(settings))
	assert.ErrorContains(t, exp.ValidateConfig(map[string]interface{}{"port": "9092", "topic": "t"}), "host")
	assert.ErrorContains(t, exp.ValidateConfig(map[string]interface{}{"host": "k", "topic": "t"}), "port")
	assert.ErrorContains(t, exp.ValidateConfig(map[string]interface{}{"host": "k", "port": "1"}), "topic")
}

func TestExporter_Handle(t *testing.T) {
	producer := &fakeProducer{}
	base := kafkaexporter.NewKafkaExporterWithFactory(func(conf kafkaexporter.Config) (kafkaexporter.Producer, error) {
		assert.Equal(t, "moderation-decisions", conf.Topic)
		return producer, nil
	})
	exp, err := base.WithSettings(settings)
	require.NoError(t, err)

	evt := sampleEvent()
	require.NoError(t, exp.Handle(context.Background(), evt))

	require.Len(t, producer.messages, 1)
	msg := producer.messages[0]
	assert.Equal(t, "moderation-decisions", *msg.TopicPartition.Topic)
	assert.Equal(t, evt.ReportID, string(msg.Key))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "Flag", decoded["final_decision"])
	assert.Equal(t, []any{"alcohol"}, decoded["violations"])

	exp.Close()
	assert.True(t, producer.flushed)
	assert.True(t, producer.closed)
}

func TestExporter_DeliveryFailure(t *testing.T) {
	producer := &fakeProducer{deliveryErr: kafka.NewError(kafka.ErrMsgTimedOut, "timed out", false)}
	exp, err := kafkaexporter.NewKafkaExporterWithFactory(func(kafkaexporter.Config) (kafkaexporter.Producer, error) {
		return producer, nil
	}).WithSettings(settings)
	require.NoError(t, err)

	err = exp.Handle(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delivery failed")
}

func TestExporter_ProduceFailure(t *testing.T) {
	exp, err := kafkaexporter.NewKafkaExporterWithFactory(func(kafkaexporter.Config) (kafkaexporter.Producer, error) {
		return &fakeProducer{produceErr: errors.New("queue full")}, nil
	}).WithSettings(settings)
	require.NoError(t, err)

	err = exp.Handle(context.Background(), sampleEvent())
	assert.ErrorContains(t, err, "queue full")
}

func TestExporter_NotInitialized(t *testing.T) {
	err := kafkaexporter.NewKafkaExporter().Handle(context.Background(), sampleEvent())
	assert.ErrorContains(t, err, "not initialized")
}

func TestExporter_MessageHeaders(t *testing.T) {
	producer := &fakeProducer{}
	exp, err := kafkaexporter.NewKafkaExporterWithFactory(func(conf kafkaexporter.Config) (kafkaexporter.Producer, error) {
		assert.Equal(t, "imageguard", conf.ClientID)
		assert.Equal(t, "all", conf.Acks)
		return producer, nil
	}).WithSettings(settings)
	require.NoError(t, err)

	evt := sampleEvent()
	require.NoError(t, exp.Handle(context.Background(), evt))

	require.Len(t, producer.messages, 1)
	headers := map[string]string{}
	for _, h := range producer.messages[0].Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, telemetry.DecisionEventType, headers["type"])
	assert.Equal(t, "Flag", headers["decision"])
	assert.Equal(t, evt.EmittedAt, producer.messages[0].Timestamp)
}
