package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/production-scheduler/internal/model"
)

type WorkOrderRepository interface {
	Create(ctx context.Context, wo *model.WorkOrder) error
	GetByWONumber(ctx context.Context, woNumber string) (*model.WorkOrder, error)
	Update(ctx context.Context, wo *model.WorkOrder) error
	// Очередь линии: заказы в SMT PRODUCTION по line_position, затем wo_number.
	ListQueue(ctx context.Context, lineID uuid.UUID) ([]model.WorkOrder, error)
	// Линии, у которых есть заказы, ожидающие раскладки.
	LinesNeedingPlacement(ctx context.Context) ([]uuid.UUID, error)
	// Снять флаг NeedsPlacement с разложенных заказов линии и с тех, что уже не в очереди SMT.
	// Заказы, появившиеся в очереди после её чтения, остаются помеченными.
	ClearNeedsPlacement(ctx context.Context, lineID uuid.UUID, placed []uuid.UUID) error
}

type GormWorkOrderRepository struct {
	db *gorm.DB
}

func NewGormWorkOrderRepository(db *gorm.DB) *GormWorkOrderRepository {
	return &GormWorkOrderRepository{db: db}
}

func (r *GormWorkOrderRepository) Create(ctx context.Context, wo *model.WorkOrder) error {
	return translate(r.db.WithContext(ctx).Create(wo).Error)
}

func (r *GormWorkOrderRepository) GetByWONumber(ctx context.Context, woNumber string) (*model.WorkOrder, error) {
	var wo model.WorkOrder
	if err := r.db.WithContext(ctx).First(&wo, "wo_number = ?", woNumber).Error; err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *GormWorkOrderRepository) Update(ctx context.Context, wo *model.WorkOrder) error {
	return translate(r.db.WithContext(ctx).
		Omit("Line", "Placements").
		Save(wo).Error)
}

func (r *GormWorkOrderRepository) ListQueue(ctx context.Context, lineID uuid.UUID) ([]model.WorkOrder, error) {
	var out []model.WorkOrder
	err := r.db.WithContext(ctx).
		Where("line_id = ?", lineID).
		Where("current_location = ?", model.LocationSMTProduction).
		Order("line_position ASC").
		Order("wo_number ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormWorkOrderRepository) LinesNeedingPlacement(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.WorkOrder{}).
		Where("needs_placement = ? AND line_id IS NOT NULL", true).
		Distinct().
		Order("line_id ASC").
		Pluck("line_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormWorkOrderRepository) ClearNeedsPlacement(ctx context.Context, lineID uuid.UUID, placed []uuid.UUID) error {
	q := r.db.WithContext(ctx).
		Model(&model.WorkOrder{}).
		Where("line_id = ? AND needs_placement = ?", lineID, true)
	if len(placed) > 0 {
		q = q.Where("(id IN ? OR current_location <> ?)", placed, model.LocationSMTProduction)
	} else {
		q = q.Where("current_location <> ?", model.LocationSMTProduction)
	}
	return q.Update("needs_placement", false).Error
}
