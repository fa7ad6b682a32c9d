package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) moderation.Repository {
	return &reportRepository{
		db: db,
	}
}

func (r *reportRepository) Save(ctx context.Context, report *moderation.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) Get(ctx context.Context, id uuid.UUID) (*moderation.Report, error) {
	var report moderation.Report
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, moderation.NewNotFoundError(id)
		}
		return nil, err
	}
	return &report, nil
}

// List returns the newest reports first.
func (r *reportRepository) List(ctx context.Context, filter moderation.ListFilter) ([]moderation.Report, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&moderation.Report{})
	if filter.Decision != "" {
		query = query.Where("final_decision = ?", filter.Decision)
	}
	if filter.Violation != "" {
		contains, err := json.Marshal([]moderation.ViolationLabel{filter.Violation})
		if err != nil {
			return nil, err
		}
		query = query.Where("violations @> ?::jsonb", string(contains))
	}
	var reports []moderation.Report
	if err := query.
		Order("created_at DESC").
		Limit(filter.Limit).
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
