package dependency_container_test

import (
	"context"
	"testing"

	"github.com/NeuralTrust/ImageGuard/pkg/config"
	"github.com/NeuralTrust/ImageGuard/pkg/dependency_container"
	"github.com/NeuralTrust/ImageGuard/pkg/detectors/memory"
	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers/factory"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

func offlineDI(cfg *config.Config) dependency_container.ContainerDI {
	set := memory.NewSafeSet()
	return dependency_container.ContainerDI{
		Cfg:       cfg,
		Logger:    newLogger(),
		Detectors: &set,
		Ingestor:  memory.NewIngestor(),
		Offline:   true,
	}
}

func TestNewContainer_Offline(t *testing.T) {
	cfg := config.Default()
	cfg.Redis.Enabled = true
	cfg.Database.Enabled = true

	c, err := dependency_container.NewContainer(offlineDI(cfg))
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.MetricsWorker)
	assert.Nil(t, c.JWTManager)
	assert.Nil(t, c.MiddlewareTransport.AuthMiddleware)
	assert.NotNil(t, c.HandlerTransport.ModerateHandler)
	assert.NotNil(t, c.HandlerTransport.HealthHandler)

	report, err := c.Moderator.Moderate(context.Background(), "clean.png")
	require.NoError(t, err)
	assert.Equal(t, moderation.DecisionAccept, report.FinalDecision)
}

func TestNewContainer_AuthEnabledWithSecret(t *testing.T) {
	cfg := config.Default()
	cfg.Server.SecretKey = "test-secret"

	c, err := dependency_container.NewContainer(offlineDI(cfg))
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.JWTManager)
	assert.NotNil(t, c.MiddlewareTransport.AuthMiddleware)
}

func TestNewDetectorSet_UnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Detectors.Nudity.Endpoint = "http://nudenet:8000/detect"

	_, err := dependency_container.NewDetectorSet(cfg, newLogger(), factory.NewProviderLocator(nil), nil, nil)
	assert.ErrorContains(t, err, "is not configured")
}

func TestNewDetectorSet_AllStepsBuilt(t *testing.T) {
	cfg := config.Default()
	cfg.Detectors.Nudity.Endpoint = "http://nudenet:8000/detect"
	cfg.Providers.Providers = map[string]config.ProviderConfig{
		"gemini": {Credentials: providers.Credentials{ApiKey: "key"}, Model: "gemini-2.0-flash"},
	}

	set, err := dependency_container.NewDetectorSet(cfg, newLogger(), factory.NewProviderLocator(nil), nil, nil)
	require.NoError(t, err)
	for name, d := range set.ByName() {
		assert.NotNil(t, d, name)
	}
}

func TestNewDetectorSet_MissingNudityEndpoint(t *testing.T) {
	_, err := dependency_container.NewDetectorSet(config.Default(), newLogger(), factory.NewProviderLocator(nil), nil, nil)
	assert.ErrorContains(t, err, "nudenet endpoint is required")
}
