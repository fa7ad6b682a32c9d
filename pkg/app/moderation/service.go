package moderation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var ErrPersistenceDisabled = errors.New("report persistence is disabled")

const DefaultBatchConcurrency = 4

// Runner executes one moderation run.
type Runner interface {
	Run(ctx context.Context, imagePath string) *moderation.Report
}

// EventPublisher ships finished reports to downstream consumers. It must not
// block the caller.
type EventPublisher interface {
	Publish(report *moderation.Report)
}

//go:generate mockery --name=Moderator --dir=. --output=./mocks --filename=moderator_mock.go --case=underscore
type Moderator interface {
	Moderate(ctx context.Context, imagePath string) (*moderation.Report, error)
	ModerateBatch(ctx context.Context, imagePaths []string) ([]*moderation.Report, error)
	Get(ctx context.Context, id uuid.UUID) (*moderation.Report, error)
	List(ctx context.Context, filter moderation.ListFilter) ([]moderation.Report, error)
}

type ServiceConfig struct {
	CacheTTL         time.Duration
	BatchConcurrency int
}

type service struct {
	logger    *logrus.Logger
	runner    Runner
	repo      moderation.Repository
	cache     moderation.Cache
	publisher EventPublisher
	cfg       ServiceConfig
}

// NewService wires the pipeline to its optional collaborators. repo, cache
// and publisher may be nil. Cache hits are stored and published like fresh
// runs, under a new ID.
func NewService(
	logger *logrus.Logger,
	runner Runner,
	repo moderation.Repository,
	cache moderation.Cache,
	publisher EventPublisher,
	cfg ServiceConfig,
) Moderator {
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = DefaultBatchConcurrency
	}
	return &service{
		logger:    logger,
		runner:    runner,
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *service) Moderate(ctx context.Context, imagePath string) (*moderation.Report, error) {
	key := s.cacheKey(imagePath)
	report := s.lookup(ctx, key, imagePath)
	if report == nil {
		report = s.runner.Run(ctx, imagePath)
		report.ID = uuid.New()
		if key != "" && cacheable(report) {
			if err := s.cache.Set(ctx, key, report, s.cfg.CacheTTL); err != nil {
				s.logger.WithError(err).WithField("image", imagePath).Warn("failed to cache moderation report")
			}
		}
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, report); err != nil {
			return nil, fmt.Errorf("failed to persist moderation report: %w", err)
		}
	}
	if s.publisher != nil {
		s.publisher.Publish(report)
	}
	return report, nil
}

// ModerateBatch runs every image independently and returns the reports in
// input order.
func (s *service) ModerateBatch(ctx context.Context, imagePaths []string) ([]*moderation.Report, error) {
	if len(imagePaths) == 0 {
		return nil, moderation.ErrEmptyBatch
	}
	reports := make([]*moderation.Report, len(imagePaths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchConcurrency)
	for i, path := range imagePaths {
		g.Go(func() error {
			report, err := s.Moderate(gctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*moderation.Report, error) {
	if s.repo == nil {
		return nil, ErrPersistenceDisabled
	}
	return s.repo.Get(ctx, id)
}

func (s *service) List(ctx context.Context, filter moderation.ListFilter) ([]moderation.Report, error) {
	if s.repo == nil {
		return nil, ErrPersistenceDisabled
	}
	return s.repo.List(ctx, filter.Normalize())
}

func (s *service) lookup(ctx context.Context, key, imagePath string) *moderation.Report {
	if key == "" {
		return nil
	}
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WithError(err).WithField("image", imagePath).Warn("failed to read moderation cache")
		return nil
	}
	if cached == nil {
		return nil
	}
	cached.ID = uuid.New()
	cached.ImagePath = imagePath
	cached.CreatedAt = time.Now().UTC()
	s.logger.WithFields(logrus.Fields{
		"image":    imagePath,
		"decision": cached.FinalDecision,
	}).Debug("moderation cache hit")
	return cached
}

// cacheKey hashes the file content; identical bytes get identical verdicts.
func (s *service) cacheKey(imagePath string) string {
	if s.cache == nil {
		return ""
	}
	f, err := os.Open(filepath.Clean(imagePath))
	if err != nil {
		return ""
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return ""
	}
	return hex.EncodeToString(h.Sum(nil))
}

func cacheable(report *moderation.Report) bool {
	return report.Status == moderation.StatusSuccess && !report.Violations.Has(moderation.LabelImageProcessing)
}
