package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/production-scheduler/internal/model"
)

type ShiftRepository interface {
	// Создать шаблон смены вместе с перерывами.
	Create(ctx context.Context, shift *model.ShiftTemplate) error
	// Найти шаблон с перерывами.
	GetByID(ctx context.Context, id uuid.UUID) (*model.ShiftTemplate, error)
	// Обновить поля шаблона (перерывы не трогаются).
	Update(ctx context.Context, shift *model.ShiftTemplate) error
	// Удалить шаблон и его перерывы. Возвращает число удалённых шаблонов.
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	// Все шаблоны линии с перерывами.
	ListByLine(ctx context.Context, lineID uuid.UUID) ([]model.ShiftTemplate, error)

	CreateBreak(ctx context.Context, br *model.ShiftBreak) error
	GetBreak(ctx context.Context, id uuid.UUID) (*model.ShiftBreak, error)
	DeleteBreak(ctx context.Context, id uuid.UUID) (int64, error)
}

type GormShiftRepository struct {
	db *gorm.DB
}

func NewGormShiftRepository(db *gorm.DB) *GormShiftRepository {
	return &GormShiftRepository{db: db}
}

func preloadBreaks(db *gorm.DB) *gorm.DB {
	return db.Order("start_time ASC").Order("id ASC")
}

func (r *GormShiftRepository) Create(ctx context.Context, shift *model.ShiftTemplate) error {
	return translate(r.db.WithContext(ctx).Create(shift).Error)
}

func (r *GormShiftRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ShiftTemplate, error) {
	var s model.ShiftTemplate
	err := r.db.WithContext(ctx).
		Preload("Breaks", preloadBreaks).
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormShiftRepository) Update(ctx context.Context, shift *model.ShiftTemplate) error {
	return translate(r.db.WithContext(ctx).
		Model(shift).
		Select("Name", "ShiftNumber", "StartTime", "EndTime", "ActiveDays", "Active", "UpdatedAt").
		Updates(shift).Error)
}

func (r *GormShiftRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	db := r.db.WithContext(ctx)
	if err := db.Where("shift_id = ?", id).Delete(&model.ShiftBreak{}).Error; err != nil {
		return 0, err
	}
	res := db.Where("id = ?", id).Delete(&model.ShiftTemplate{})
	return res.RowsAffected, translate(res.Error)
}

func (r *GormShiftRepository) ListByLine(ctx context.Context, lineID uuid.UUID) ([]model.ShiftTemplate, error) {
	var shifts []model.ShiftTemplate
	err := r.db.WithContext(ctx).
		Preload("Breaks", preloadBreaks).
		Where("line_id = ?", lineID).
		Order("shift_number ASC").
		Order("start_time ASC").
		Order("id ASC").
		Find(&shifts).Error
	if err != nil {
		return nil, err
	}
	return shifts, nil
}

func (r *GormShiftRepository) CreateBreak(ctx context.Context, br *model.ShiftBreak) error {
	return translate(r.db.WithContext(ctx).Create(br).Error)
}

func (r *GormShiftRepository) GetBreak(ctx context.Context, id uuid.UUID) (*model.ShiftBreak, error) {
	var b model.ShiftBreak
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormShiftRepository) DeleteBreak(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ShiftBreak{})
	return res.RowsAffected, res.Error
}
