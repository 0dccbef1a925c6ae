package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/model"
)

type OverrideRepository interface {
	Create(ctx context.Context, o *model.CapacityOverride) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.CapacityOverride, error)
	Update(ctx context.Context, o *model.CapacityOverride) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	// Переопределения линии, чей [start_date, end_date] пересекает [from, to].
	ListInRange(ctx context.Context, lineID uuid.UUID, from, to calendar.Date) ([]model.CapacityOverride, error)
}

type GormOverrideRepository struct {
	db *gorm.DB
}

func NewGormOverrideRepository(db *gorm.DB) *GormOverrideRepository {
	return &GormOverrideRepository{db: db}
}

func (r *GormOverrideRepository) Create(ctx context.Context, o *model.CapacityOverride) error {
	return translate(r.db.WithContext(ctx).Create(o).Error)
}

func (r *GormOverrideRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CapacityOverride, error) {
	var o model.CapacityOverride
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormOverrideRepository) Update(ctx context.Context, o *model.CapacityOverride) error {
	return translate(r.db.WithContext(ctx).
		Model(o).
		Select("StartDate", "EndDate", "TotalHours", "Reason", "ShiftConfig", "UpdatedAt").
		Updates(o).Error)
}

func (r *GormOverrideRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.CapacityOverride{})
	return res.RowsAffected, res.Error
}

func (r *GormOverrideRepository) ListInRange(
	ctx context.Context,
	lineID uuid.UUID,
	from, to calendar.Date,
) ([]model.CapacityOverride, error) {
	var out []model.CapacityOverride
	err := r.db.WithContext(ctx).
		Where("line_id = ?", lineID).
		Where("start_date <= ? AND end_date >= ?", model.DateOf(to), model.DateOf(from)).
		Order("start_date ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
