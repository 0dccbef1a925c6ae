package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/production-scheduler/internal/model"
)

type ChangeEventRepository interface {
	Create(ctx context.Context, e *model.ChangeEvent) error
	// Необработанные события в порядке поступления.
	ListPending(ctx context.Context, limit int) ([]model.ChangeEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID, at time.Time, errMsg string) error
}

type GormChangeEventRepository struct {
	db *gorm.DB
}

func NewGormChangeEventRepository(db *gorm.DB) *GormChangeEventRepository {
	return &GormChangeEventRepository{db: db}
}

func (r *GormChangeEventRepository) Create(ctx context.Context, e *model.ChangeEvent) error {
	return translate(r.db.WithContext(ctx).Create(e).Error)
}

func (r *GormChangeEventRepository) ListPending(ctx context.Context, limit int) ([]model.ChangeEvent, error) {
	var out []model.ChangeEvent
	q := r.db.WithContext(ctx).
		Where("processed_at IS NULL").
		Order("created_at ASC").
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormChangeEventRepository) MarkProcessed(ctx context.Context, id uuid.UUID, at time.Time, errMsg string) error {
	return r.db.WithContext(ctx).
		Model(&model.ChangeEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"processed_at": at,
			"error":        errMsg,
		}).Error
}
