package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ImageGuard/pkg/domain/telemetry"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/cache"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/telemetry/redis"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExporter_Handle(t *testing.T) {
	db, mock := redismock.NewClientMock()
	base := redis.NewRedisExporter(cache.NewClientFromRedis(db))
	require.NoError(t, base.ValidateConfig(map[string]interface{}{"channel": "mod"}))

	exp, err := base.WithSettings(map[string]interface{}{"channel": "mod"})
	require.NoError(t, err)

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	report := moderation.NewReport("cat.png", ts)
	report.FinalDecision = moderation.DecisionAccept
	evt := telemetry.NewDecisionEvent(report, ts)

	raw, err := json.Marshal(evt)
	require.NoError(t, err)
	payload, err := json.Marshal(redis.Message{Type: telemetry.DecisionEventType, Event: raw})
	require.NoError(t, err)

	mock.ExpectPublish("mod", string(payload)).SetVal(1)

	require.NoError(t, exp.Handle(context.Background(), evt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExporter_DefaultChannel(t *testing.T) {
	db, _ := redismock.NewClientMock()
	exp, err := redis.NewRedisExporter(cache.NewClientFromRedis(db)).WithSettings(nil)
	require.NoError(t, err)
	assert.Equal(t, redis.ExporterName, exp.Name())
}

func TestExporter_RequiresClient(t *testing.T) {
	err := redis.NewRedisExporter(nil).ValidateConfig(nil)
	assert.ErrorContains(t, err, "requires a redis connection")
}
