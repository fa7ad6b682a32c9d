package moderation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	mu       sync.Mutex
	calls    []string
	decision moderation.Decision
	failOn   string
}

func (r *fakeRunner) Run(_ context.Context, imagePath string) *moderation.Report {
	r.mu.Lock()
	r.calls = append(r.calls, imagePath)
	r.mu.Unlock()

	report := moderation.NewReport(imagePath, fixedNow)
	if imagePath == r.failOn {
		report.FinalDecision = moderation.DecisionReject
		report.Violations.Add(moderation.LabelImageProcessing)
		return report
	}
	if r.decision != "" {
		report.FinalDecision = r.decision
	}
	return report
}

type recordingPublisher struct {
	mu      sync.Mutex
	reports []*moderation.Report
}

func (p *recordingPublisher) Publish(report *moderation.Report) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, report)
}

func writeImage(t *testing.T, content string) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.png")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	sum := sha256.Sum256([]byte(content))
	return path, hex.EncodeToString(sum[:])
}

func TestService_Moderate(t *testing.T) {
	runner := &fakeRunner{decision: moderation.DecisionFlag}
	publisher := &recordingPublisher{}
	svc := NewService(newTestLogger(), runner, nil, nil, publisher, ServiceConfig{})

	report, err := svc.Moderate(context.Background(), "data/a.png")

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, report.ID)
	assert.Equal(t, moderation.DecisionFlag, report.FinalDecision)
	assert.Equal(t, []string{"data/a.png"}, runner.calls)
	assert.Equal(t, []*moderation.Report{report}, publisher.reports)
}

func TestService_Moderate_CacheHit(t *testing.T) {
	path, key := writeImage(t, "png-bytes")
	cached := moderation.NewReport("elsewhere.png", fixedNow)
	cached.FinalDecision = moderation.DecisionReject
	cached.Violations.Add(moderation.LabelWeapons)

	cache := mocks.NewCache(t)
	cache.On("Get", mock.Anything, key).Return(cached, nil).Once()
	repo := mocks.NewRepository(t)
	repo.On("Save", mock.Anything, cached).Return(nil).Once()
	publisher := &recordingPublisher{}
	runner := &fakeRunner{}
	svc := NewService(newTestLogger(), runner, repo, cache, publisher, ServiceConfig{CacheTTL: time.Hour})

	report, err := svc.Moderate(context.Background(), path)

	require.NoError(t, err)
	assert.Empty(t, runner.calls)
	assert.Equal(t, path, report.ImagePath)
	assert.Equal(t, moderation.DecisionReject, report.FinalDecision)
	assert.NotEqual(t, uuid.Nil, report.ID)
	assert.Equal(t, []*moderation.Report{report}, publisher.reports)
}

func TestService_Moderate_CacheMissStoresAndPersists(t *testing.T) {
	path, key := writeImage(t, "other-bytes")
	cache := mocks.NewCache(t)
	cache.On("Get", mock.Anything, key).Return(nil, nil).Once()
	cache.On("Set", mock.Anything, key, mock.AnythingOfType("*moderation.Report"), time.Minute).Return(nil).Once()
	repo := mocks.NewRepository(t)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*moderation.Report")).Return(nil).Once()
	svc := NewService(newTestLogger(), &fakeRunner{}, repo, cache, nil, ServiceConfig{CacheTTL: time.Minute})

	report, err := svc.Moderate(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, moderation.DecisionAccept, report.FinalDecision)
}

func TestService_Moderate_CacheErrorsAreNotFatal(t *testing.T) {
	path, key := writeImage(t, "bytes")
	cache := mocks.NewCache(t)
	cache.On("Get", mock.Anything, key).Return(nil, errors.New("redis down")).Once()
	cache.On("Set", mock.Anything, key, mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()
	svc := NewService(newTestLogger(), &fakeRunner{}, nil, cache, nil, ServiceConfig{})

	report, err := svc.Moderate(context.Background(), path)

	require.NoError(t, err)
	assert.NotNil(t, report)
}

func TestService_Moderate_IngestionFailureIsNotCached(t *testing.T) {
	path, key := writeImage(t, "broken")
	cache := mocks.NewCache(t)
	cache.On("Get", mock.Anything, key).Return(nil, nil).Once()
	svc := NewService(newTestLogger(), &fakeRunner{failOn: path}, nil, cache, nil, ServiceConfig{})

	report, err := svc.Moderate(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, moderation.DecisionReject, report.FinalDecision)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Moderate_MissingFileSkipsCache(t *testing.T) {
	cache := mocks.NewCache(t)
	svc := NewService(newTestLogger(), &fakeRunner{}, nil, cache, nil, ServiceConfig{})

	_, err := svc.Moderate(context.Background(), filepath.Join(t.TempDir(), "missing.png"))

	require.NoError(t, err)
	cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestService_Moderate_PersistenceError(t *testing.T) {
	repo := mocks.NewRepository(t)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	svc := NewService(newTestLogger(), &fakeRunner{}, repo, nil, nil, ServiceConfig{})

	report, err := svc.Moderate(context.Background(), "a.png")

	assert.Nil(t, report)
	assert.ErrorContains(t, err, "db down")
}

func TestService_ModerateBatch(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewService(newTestLogger(), runner, nil, nil, nil, ServiceConfig{BatchConcurrency: 2})
	paths := []string{"a.png", "b.png", "c.png", "d.png", "e.png"}

	reports, err := svc.ModerateBatch(context.Background(), paths)

	require.NoError(t, err)
	require.Len(t, reports, len(paths))
	for i, r := range reports {
		assert.Equal(t, paths[i], r.ImagePath)
	}
	assert.ElementsMatch(t, paths, runner.calls)
}

func TestService_ModerateBatch_Empty(t *testing.T) {
	svc := NewService(newTestLogger(), &fakeRunner{}, nil, nil, nil, ServiceConfig{})

	_, err := svc.ModerateBatch(context.Background(), nil)

	assert.ErrorIs(t, err, moderation.ErrEmptyBatch)
}

func TestService_ModerateBatch_PropagatesErrors(t *testing.T) {
	repo := mocks.NewRepository(t)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down"))
	svc := NewService(newTestLogger(), &fakeRunner{}, repo, nil, nil, ServiceConfig{BatchConcurrency: 1})

	reports, err := svc.ModerateBatch(context.Background(), []string{"a.png", "b.png"})

	assert.Nil(t, reports)
	assert.ErrorContains(t, err, "a.png")
}

func TestService_Get(t *testing.T) {
	id := uuid.New()
	stored := moderation.NewReport("a.png", fixedNow)
	stored.ID = id
	repo := mocks.NewRepository(t)
	repo.On("Get", mock.Anything, id).Return(stored, nil).Once()

	report, err := NewService(newTestLogger(), &fakeRunner{}, repo, nil, nil, ServiceConfig{}).Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, stored, report)

	_, err = NewService(newTestLogger(), &fakeRunner{}, nil, nil, nil, ServiceConfig{}).Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrPersistenceDisabled)
}

func TestService_List(t *testing.T) {
	repo := mocks.NewRepository(t)
	repo.On("List", mock.Anything, moderation.ListFilter{
		Decision: moderation.DecisionFlag,
		Limit:    moderation.DefaultListLimit,
	}).Return([]moderation.Report{*moderation.NewReport("a.png", fixedNow)}, nil).Once()

	reports, err := NewService(newTestLogger(), &fakeRunner{}, repo, nil, nil, ServiceConfig{}).
		List(context.Background(), moderation.ListFilter{Decision: moderation.DecisionFlag})
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	_, err = NewService(newTestLogger(), &fakeRunner{}, nil, nil, nil, ServiceConfig{}).
		List(context.Background(), moderation.ListFilter{})
	assert.ErrorIs(t, err, ErrPersistenceDisabled)
}
