package dependency_container

import (
	"fmt"
	"net/http"
	"time"

	appModeration "github.com/NeuralTrust/ImageGuard/pkg/app/moderation"
	"github.com/NeuralTrust/ImageGuard/pkg/config"
	"github.com/NeuralTrust/ImageGuard/pkg/detectors"
	"github.com/NeuralTrust/ImageGuard/pkg/detectors/ingestion"
	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	domainTelemetry "github.com/NeuralTrust/ImageGuard/pkg/domain/telemetry"
	handlers "github.com/NeuralTrust/ImageGuard/pkg/handlers/http"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/cache"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/database"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/jwt"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/metrics"
	_ "github.com/NeuralTrust/ImageGuard/pkg/infra/migrations"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/prometheus"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/providers/factory"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/repository"
	infraTelemetry "github.com/NeuralTrust/ImageGuard/pkg/infra/telemetry"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/telemetry/kafka"
	redisExporter "github.com/NeuralTrust/ImageGuard/pkg/infra/telemetry/redis"
	"github.com/NeuralTrust/ImageGuard/pkg/infra/telemetry/webhook"
	"github.com/NeuralTrust/ImageGuard/pkg/middleware"
	"github.com/sirupsen/logrus"
)

const downloadTimeout = 30 * time.Second

type Container struct {
	Pipeline            *appModeration.Pipeline
	Moderator           appModeration.Moderator
	Fetcher             *ingestion.Fetcher
	MetricsWorker       metrics.Worker
	JWTManager          jwt.Manager
	HandlerTransport    handlers.HandlerTransport
	MiddlewareTransport *middleware.Transport

	logger  *logrus.Logger
	closers []func() error
}

type ContainerDI struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	// Detectors and Ingestor replace the configured ones when set. The CLI
	// dry-run mode and tests use in-memory implementations here.
	Detectors *detectors.Set
	Ingestor  detectors.Ingestor
	// Offline skips redis, postgres and telemetry exporters even when they
	// are enabled in the configuration.
	Offline bool
}

func NewContainer(di ContainerDI) (*Container, error) {
	cfg, logger := di.Cfg, di.Logger
	c := &Container{logger: logger}

	fastClient := httpx.NewFastHTTPClient(httpx.WithUserAgent("imageguard"))
	httpClient := &http.Client{Timeout: downloadTimeout}

	prometheus.Initialize(prometheus.MetricsConfig{
		EnableStepLatency: cfg.Metrics.EnableStepLatency,
		EnableViolations:  cfg.Metrics.EnableViolations,
	})

	set := di.Detectors
	if set == nil {
		built, err := NewDetectorSet(cfg, logger, factory.NewProviderLocator(httpClient), fastClient.Raw(), httpClient)
		if err != nil {
			return nil, err
		}
		set = &built
	}
	ingestor := di.Ingestor
	if ingestor == nil {
		ingestor = ingestion.NewPreprocessor(logger, cfg.Ingestion)
	}

	pipelineOpts := []appModeration.Option{
		appModeration.WithStepTimeout(cfg.Pipeline.StepTimeout),
		appModeration.WithNudityRetraction(cfg.Pipeline.RetractNudityOnException),
	}
	if cfg.Metrics.Enabled {
		pipelineOpts = append(pipelineOpts, appModeration.WithObserver(prometheus.NewObserver()))
	}
	pipeline, err := appModeration.NewPipeline(logger, ingestor, *set, pipelineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}
	c.Pipeline = pipeline

	healthChecks := map[string]handlers.HealthCheck{}

	var (
		cacheClient cache.Client
		reportCache moderation.Cache
		repo        moderation.Repository
	)
	if cfg.Redis.Enabled && !di.Offline {
		cacheClient, err = cache.NewClient(cfg.Redis.Config, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		reportCache = cache.NewReportCache(cacheClient)
		healthChecks["redis"] = cacheClient.Ping
		c.closers = append(c.closers, cacheClient.RedisClient().Close)
	}
	if cfg.Database.Enabled && !di.Offline {
		db, err := database.NewDB(logger, &cfg.Database.Config)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		repo = repository.NewReportRepository(db.DB)
		healthChecks["database"] = db.Ping
		c.closers = append(c.closers, db.Close)
	}

	var exporters []domainTelemetry.Exporter
	if !di.Offline {
		locator := infraTelemetry.NewExporterLocator(
			infraTelemetry.WithExporter(kafka.NewKafkaExporter()),
			infraTelemetry.WithExporter(redisExporter.NewRedisExporter(cacheClient)),
			infraTelemetry.WithExporter(webhook.NewWebhookExporter(fastClient)),
		)
		exporters, err = locator.Build(cfg.Telemetry.Exporters)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
	}
	var publisher appModeration.EventPublisher
	if len(exporters) > 0 {
		worker := metrics.NewWorker(logger, exporters, metrics.WithQueueSize(cfg.Telemetry.QueueSize))
		worker.StartWorkers(cfg.Telemetry.Workers)
		c.MetricsWorker = worker
		publisher = worker
	}

	c.Moderator = appModeration.NewService(logger, pipeline, repo, reportCache, publisher, appModeration.ServiceConfig{
		CacheTTL:         cfg.Pipeline.CacheTTL,
		BatchConcurrency: cfg.Pipeline.BatchConcurrency,
	})
	c.Fetcher = ingestion.NewFetcher(fastClient, cfg.Server.UploadDir, ingestion.WithMaxBytes(cfg.Ingestion.MaxBytes))
	apiFetcher := ingestion.NewFetcher(fastClient, cfg.Server.UploadDir,
		ingestion.WithMaxBytes(cfg.Ingestion.MaxBytes),
		ingestion.WithLocalRoot(cfg.Server.LocalRoot),
	)

	c.MiddlewareTransport = &middleware.Transport{
		AccessLogMiddleware: middleware.NewAccessLogMiddleware(logger),
	}
	if cfg.Server.SecretKey != "" {
		c.JWTManager = jwt.NewJwtManager(cfg.Server.SecretKey)
		c.MiddlewareTransport.AuthMiddleware = middleware.NewAuthMiddleware(logger, c.JWTManager)
	} else {
		logger.Warn("server.secret_key is empty, API authentication is disabled")
	}

	c.HandlerTransport = handlers.HandlerTransport{
		ModerateHandler:      handlers.NewModerateHandler(logger, c.Moderator, apiFetcher, cfg.Server.UploadDir),
		ModerateBatchHandler: handlers.NewModerateBatchHandler(logger, c.Moderator, apiFetcher),
		GetReportHandler:     handlers.NewGetReportHandler(logger, c.Moderator),
		ListReportsHandler:   handlers.NewListReportsHandler(logger, c.Moderator),
		GetVersionHandler:    handlers.NewGetVersionHandler(),
		HealthHandler:        handlers.NewHealthHandler(healthChecks),
	}

	return c, nil
}

// Close drains the telemetry worker and releases connections. Safe to call
// on a partially built container.
func (c *Container) Close() {
	if c.MetricsWorker != nil {
		c.MetricsWorker.Shutdown()
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.logger.WithError(err).Warn("failed to close dependency")
		}
	}
	c.closers = nil
}
