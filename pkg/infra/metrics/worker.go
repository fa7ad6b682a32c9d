package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ImageGuard/pkg/domain/telemetry"
	"github.com/sirupsen/logrus"
)

const (
	DefaultQueueSize     = 1000
	DefaultHandleTimeout = 10 * time.Second
)

type Worker interface {
	Publish(report *moderation.Report)
	StartWorkers(n int)
	Shutdown()
}

type worker struct {
	logger    *logrus.Logger
	exporters []telemetry.Exporter
	taskChan  chan func()
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closed    bool
	wg        sync.WaitGroup
	timeout   time.Duration
	now       func() time.Time
}

type WorkerOption func(*worker)

func WithQueueSize(n int) WorkerOption {
	return func(w *worker) {
		if n > 0 {
			w.taskChan = make(chan func(), n)
		}
	}
}

func WithHandleTimeout(d time.Duration) WorkerOption {
	return func(w *worker) { w.timeout = d }
}

func WithClock(now func() time.Time) WorkerOption {
	return func(w *worker) { w.now = now }
}

// NewWorker fans finished reports out to the already configured exporters
// on a bounded queue. Exporters are closed on Shutdown.
func NewWorker(logger *logrus.Logger, exporters []telemetry.Exporter, opts ...WorkerOption) Worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &worker{
		logger:    logger,
		exporters: exporters,
		taskChan:  make(chan func(), DefaultQueueSize),
		ctx:       ctx,
		cancel:    cancel,
		timeout:   DefaultHandleTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (m *worker) Publish(report *moderation.Report) {
	if report == nil || len(m.exporters) == 0 {
		return
	}
	evt := telemetry.NewDecisionEvent(report, m.now().UTC())
	m.enqueueTask(func() {
		m.export(evt)
	}, evt.ReportID)
}

func (m *worker) export(evt *telemetry.DecisionEvent) {
	var failed []string
	for _, exporter := range m.exporters {
		ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
		err := exporter.Handle(ctx, evt)
		cancel()
		if err != nil {
			m.logger.WithFields(logrus.Fields{
				"report_id": evt.ReportID,
				"exporter":  exporter.Name(),
			}).WithError(err).Error("exporter failed")
			failed = append(failed, exporter.Name())
		}
	}
	if len(failed) > 0 {
		m.logger.WithField("failedExporters", failed).
			Warnf("%d exporters failed to handle decision event", len(failed))
	}
}

func (m *worker) StartWorkers(n int) {
	m.logger.WithField("workers", n).Info("starting telemetry workers")
	for i := 0; i < n; i++ {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			for task := range m.taskChan {
				task()
			}
		}()
	}
}

// Shutdown stops accepting events, drains what is queued and closes the
// exporters.
func (m *worker) Shutdown() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.taskChan)
	m.mu.Unlock()

	m.logger.Info("shutting down telemetry workers")
	m.wg.Wait()
	m.cancel()
	for _, exporter := range m.exporters {
		exporter.Close()
	}
	m.logger.Info("telemetry workers stopped")
}

func (m *worker) enqueueTask(task func(), reportID string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return
	}
	select {
	case m.taskChan <- task:
	default:
		m.logger.WithField("report_id", reportID).
			Warn("taskChan is full, dropping decision event")
	}
}
