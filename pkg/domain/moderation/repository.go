package moderation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

//go:generate mockery --name=Repository --dir=. --output=./mocks --filename=repository_mock.go --case=underscore
type Repository interface {
	Save(ctx context.Context, report *Report) error
	Get(ctx context.Context, id uuid.UUID) (*Report, error)
	List(ctx context.Context, filter ListFilter) ([]Report, error)
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// ListFilter narrows a report listing. Zero values match everything.
type ListFilter struct {
	Decision  Decision
	Violation ViolationLabel
	Limit     int
}

// Normalize clamps Limit into (0, MaxListLimit].
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	return f
}

// Cache keeps finished reports keyed by a digest of the image content.
// Get returns nil, nil on a miss.
//
//go:generate mockery --name=Cache --dir=. --output=./mocks --filename=cache_mock.go --case=underscore
type Cache interface {
	Get(ctx context.Context, key string) (*Report, error)
	Set(ctx context.Context, key string, report *Report, ttl time.Duration) error
}
