package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NeuralTrust/ImageGuard/pkg/detectors"
	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/sirupsen/logrus"
)

// Contribution says how an affirmative verdict feeds the violation set.
type Contribution int

const (
	ContributeNothing Contribution = iota
	ContributeTags
	ContributeFixedLabel
)

type Step struct {
	Agent        string
	Kind         moderation.ResultKind
	Detector     detectors.Detector
	Contribution Contribution
	Label        moderation.ViolationLabel
}

// StepFunc runs one detector step against the ingested image.
type StepFunc func(ctx context.Context, imagePath string) (*moderation.DetectorResult, error)

// StepMiddleware wraps a step. Middlewares must not change how results are
// aggregated, only how a step is invoked.
type StepMiddleware func(step Step, next StepFunc) StepFunc

// Observer receives per-step and per-run measurements.
type Observer interface {
	ObserveStep(agent string, status moderation.Status, elapsed time.Duration)
	ObserveRun(report *moderation.Report, elapsed time.Duration)
}

type Option func(*Pipeline)

func WithTagger(t Tagger) Option {
	return func(p *Pipeline) { p.tagger = t }
}

func WithMiddleware(m ...StepMiddleware) Option {
	return func(p *Pipeline) { p.middleware = append(p.middleware, m...) }
}

// WithStepTimeout bounds every detector step. A step that overruns is
// recorded as a detector failure and the run continues.
func WithStepTimeout(d time.Duration) Option {
	return WithMiddleware(timeoutMiddleware(d))
}

func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observer = o }
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithNudityRetraction lets an affirmative nudity-exception verdict remove a
// nudity violation. Off unless explicitly configured.
func WithNudityRetraction(enabled bool) Option {
	return func(p *Pipeline) { p.retractNudity = enabled }
}

type Pipeline struct {
	logger        *logrus.Logger
	ingestor      detectors.Ingestor
	steps         []Step
	tagger        Tagger
	middleware    []StepMiddleware
	observer      Observer
	now           func() time.Time
	retractNudity bool
}

func NewPipeline(
	logger *logrus.Logger,
	ingestor detectors.Ingestor,
	set detectors.Set,
	opts ...Option,
) (*Pipeline, error) {
	if ingestor == nil {
		return nil, errors.New("ingestor is required")
	}
	for name, d := range set.ByName() {
		if d == nil {
			return nil, fmt.Errorf("detector %q is required", name)
		}
	}
	p := &Pipeline{
		logger:   logger,
		ingestor: ingestor,
		tagger:   NewKeywordTagger(),
		now:      func() time.Time { return time.Now().UTC() },
		steps: []Step{
			{Agent: moderation.AgentNudity, Kind: moderation.KindStructured, Detector: set.Nudity},
			{Agent: moderation.AgentNudityException, Kind: moderation.KindText, Detector: set.NudityException},
			{Agent: moderation.AgentViolence, Kind: moderation.KindText, Detector: set.Violence, Contribution: ContributeTags},
			{
				Agent: moderation.AgentDrugs, Kind: moderation.KindText, Detector: set.Drugs,
				Contribution: ContributeFixedLabel, Label: moderation.LabelDrugs,
			},
			{Agent: moderation.AgentAlcoholSmoking, Kind: moderation.KindText, Detector: set.AlcoholSmoking, Contribution: ContributeTags},
			{
				Agent: moderation.AgentHate, Kind: moderation.KindText, Detector: set.Hate,
				Contribution: ContributeFixedLabel, Label: moderation.LabelHateSymbols,
			},
			{Agent: moderation.AgentPIIText, Kind: moderation.KindText, Detector: set.PIIText, Contribution: ContributeTags},
			{
				Agent: moderation.AgentQRCode, Kind: moderation.KindText, Detector: set.QRCode,
				Contribution: ContributeFixedLabel, Label: moderation.LabelQRCodes,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Steps returns the detector steps in execution order.
func (p *Pipeline) Steps() []Step {
	out := make([]Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// Run moderates one image. It never returns nil: every outcome, including an
// aborted run, is described by the report.
func (p *Pipeline) Run(ctx context.Context, imagePath string) *moderation.Report {
	start := time.Now()
	report := moderation.NewReport(imagePath, p.now())
	defer func() {
		if p.observer != nil {
			p.observer.ObserveRun(report, time.Since(start))
		}
		p.logger.WithFields(logrus.Fields{
			"image":      imagePath,
			"status":     report.Status,
			"decision":   report.FinalDecision,
			"violations": report.Violations.Strings(),
			"elapsed_ms": time.Since(start).Milliseconds(),
		}).Info("moderation finished")
	}()

	ingested := p.ingest(ctx, imagePath)
	report.Record(moderation.AgentIngestion, ingested)
	if !ingested.Succeeded() || ingested.ProcessedImage == nil {
		report.FinalDecision = moderation.DecisionReject
		report.Violations.Add(moderation.LabelImageProcessing)
		report.Rationale = "Reject: image could not be processed"
		return report
	}
	report.Fingerprint = ingested.ProcessedImage.Fingerprint

	if err := p.detect(ctx, ingested.ProcessedImage.OutputPath, report); err != nil {
		p.logger.WithError(err).WithField("image", imagePath).Error("moderation pipeline failed")
		report.Fail(err)
		return report
	}

	fusion := Fuse(report.Violations)
	report.FinalDecision = fusion.Decision
	report.Rationale = fusion.Rationale()
	return report
}

func (p *Pipeline) ingest(ctx context.Context, imagePath string) (result *moderation.DetectorResult) {
	defer func() {
		if r := recover(); r != nil {
			result = moderation.NewErrorResult(moderation.KindIngestion, fmt.Sprintf("panic recovered: %v", r))
		}
	}()
	result, err := p.ingestor.Preprocess(ctx, imagePath)
	if err != nil {
		return moderation.NewErrorResult(moderation.KindIngestion, err.Error())
	}
	if err := result.Validate(); err != nil {
		return moderation.NewErrorResult(moderation.KindIngestion, err.Error())
	}
	return result
}

func (p *Pipeline) detect(ctx context.Context, processedPath string, report *moderation.Report) (err error) {
	var current string
	defer func() {
		if r := recover(); r != nil {
			err = moderation.NewStepError(current, fmt.Errorf("panic recovered: %v", r))
		}
	}()

	for _, step := range p.steps {
		current = step.Agent
		result, err := p.invoke(ctx, step, processedPath)
		if err != nil {
			return moderation.NewStepError(step.Agent, err)
		}
		if err := result.Validate(); err != nil {
			return moderation.NewStepError(step.Agent, fmt.Errorf("invalid result: %w", err))
		}
		report.Record(step.Agent, result)
		p.aggregate(step, result, report)
	}
	return nil
}

func (p *Pipeline) invoke(ctx context.Context, step Step, imagePath string) (*moderation.DetectorResult, error) {
	run := StepFunc(step.Detector.Detect)
	for i := len(p.middleware) - 1; i >= 0; i-- {
		run = p.middleware[i](step, run)
	}

	start := time.Now()
	result, err := run(ctx, imagePath)
	elapsed := time.Since(start)

	status := moderation.StatusError
	if err == nil && result.Succeeded() {
		status = moderation.StatusSuccess
	}
	if p.observer != nil {
		p.observer.ObserveStep(step.Agent, status, elapsed)
	}
	entry := p.logger.WithFields(logrus.Fields{
		"agent":      step.Agent,
		"status":     status,
		"elapsed_ms": elapsed.Milliseconds(),
	})
	if err == nil && result != nil && result.Status == moderation.StatusError {
		entry = entry.WithField("message", result.Message)
	}
	entry.Debug("detector finished")
	return result, err
}

func (p *Pipeline) aggregate(step Step, result *moderation.DetectorResult, report *moderation.Report) {
	if !result.Succeeded() {
		report.Score(step.Agent, moderation.ConfidenceNone)
		return
	}

	if step.Kind == moderation.KindStructured {
		report.Score(step.Agent, NudityConfidence(result))
		if result.Label == moderation.NudityLabelUnsafe {
			report.Violations.Add(moderation.LabelNudity)
		}
		return
	}

	text := result.ResponseText()
	report.Score(step.Agent, ExtractConfidence(text))
	if !p.tagger.Affirmative(text) {
		return
	}
	switch step.Contribution {
	case ContributeTags:
		report.Violations.Add(p.tagger.Tag(text)...)
	case ContributeFixedLabel:
		report.Violations.Add(step.Label)
	case ContributeNothing:
		if step.Agent == moderation.AgentNudityException && p.retractNudity {
			delete(report.Violations, moderation.LabelNudity)
		}
	}
}

func timeoutMiddleware(d time.Duration) StepMiddleware {
	return func(step Step, next StepFunc) StepFunc {
		return func(ctx context.Context, imagePath string) (*moderation.DetectorResult, error) {
			if d <= 0 {
				return next(ctx, imagePath)
			}
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			type outcome struct {
				result *moderation.DetectorResult
				err    error
			}
			done := make(chan outcome, 1)
			go func() {
				defer func() {
					if r := recover(); r != nil {
						done <- outcome{err: fmt.Errorf("panic recovered: %v", r)}
					}
				}()
				result, err := next(ctx, imagePath)
				done <- outcome{result: result, err: err}
			}()

			select {
			case o := <-done:
				return o.result, o.err
			case <-ctx.Done():
				return moderation.NewErrorResult(step.Kind, fmt.Sprintf("%s timed out after %s", step.Agent, d)), nil
			}
		}
	}
}
