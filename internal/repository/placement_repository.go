package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/model"
)

type PlacementRepository interface {
	// Заменить раскладку линии целиком.
	ReplaceForLine(ctx context.Context, lineID uuid.UUID, placements []model.Placement) error
	DeleteByWorkOrder(ctx context.Context, workOrderID uuid.UUID) error
	ListByLine(ctx context.Context, lineID uuid.UUID, from, to calendar.Date) ([]model.Placement, error)
	ListByWorkOrder(ctx context.Context, workOrderID uuid.UUID) ([]model.Placement, error)
}

type GormPlacementRepository struct {
	db *gorm.DB
}

func NewGormPlacementRepository(db *gorm.DB) *GormPlacementRepository {
	return &GormPlacementRepository{db: db}
}

func (r *GormPlacementRepository) ReplaceForLine(ctx context.Context, lineID uuid.UUID, placements []model.Placement) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("line_id = ?", lineID).Delete(&model.Placement{}).Error; err != nil {
		return err
	}
	if len(placements) == 0 {
		return nil
	}
	return translate(db.CreateInBatches(placements, 200).Error)
}

func (r *GormPlacementRepository) DeleteByWorkOrder(ctx context.Context, workOrderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Delete(&model.Placement{}).Error
}

func (r *GormPlacementRepository) ListByLine(
	ctx context.Context,
	lineID uuid.UUID,
	from, to calendar.Date,
) ([]model.Placement, error) {
	var out []model.Placement
	err := r.db.WithContext(ctx).
		Where("line_id = ?", lineID).
		Where("day >= ? AND day <= ?", model.DateOf(from), model.DateOf(to)).
		Order("day ASC").
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormPlacementRepository) ListByWorkOrder(ctx context.Context, workOrderID uuid.UUID) ([]model.Placement, error) {
	var out []model.Placement
	err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Order("day ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
