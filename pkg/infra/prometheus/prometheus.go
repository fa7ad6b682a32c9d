package prometheus

import (
	"sync"
	"time"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Detector latency buckets in milliseconds. Model calls dominate, so the
	// upper range is wide.
	latencyBuckets = []float64{
		5, 25, 100,
		250, 500, 1000,
		2500, 5000, 10000,
		30000, 60000,
	}

	RunsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "imageguard_runs_total",
			Help: "Total number of moderation runs by outcome",
		},
		[]string{"status", "decision"},
	)

	RunLatency = promauto.With(registerer).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "imageguard_run_latency_ms",
			Help:    "End-to-end moderation latency in milliseconds",
			Buckets: latencyBuckets,
		},
	)

	StepLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "imageguard_step_latency_ms",
			Help:    "Detector step latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"agent", "status"},
	)

	ViolationsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "imageguard_violations_total",
			Help: "Violation labels attached to reports",
		},
		[]string{"label"},
	)
)

type MetricsConfig struct {
	EnableStepLatency bool // per-detector histograms
	EnableViolations  bool
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		EnableStepLatency: true,
		EnableViolations:  true,
	}
}

var (
	Config       = DefaultMetricsConfig()
	registerOnce sync.Once
)

// Initialize may be called more than once; collectors are registered on the
// first call only.
func Initialize(cfg MetricsConfig) {
	Config = cfg
	registerOnce.Do(func() {
		registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		prometheus.DefaultRegisterer = registry
		prometheus.DefaultGatherer = registry
	})
}

// Gatherer exposes the private registry for the metrics endpoint.
func Gatherer() prometheus.Gatherer {
	return registry
}

// Observer records pipeline measurements into the registry.
type Observer struct{}

func NewObserver() *Observer {
	return &Observer{}
}

func (o *Observer) ObserveStep(agent string, status moderation.Status, elapsed time.Duration) {
	if !Config.EnableStepLatency {
		return
	}
	StepLatency.WithLabelValues(agent, string(status)).Observe(float64(elapsed.Milliseconds()))
}

func (o *Observer) ObserveRun(report *moderation.Report, elapsed time.Duration) {
	RunsTotal.WithLabelValues(string(report.Status), string(report.FinalDecision)).Inc()
	RunLatency.Observe(float64(elapsed.Milliseconds()))
	if !Config.EnableViolations {
		return
	}
	for _, label := range report.Violations.Strings() {
		ViolationsTotal.WithLabelValues(label).Inc()
	}
}
