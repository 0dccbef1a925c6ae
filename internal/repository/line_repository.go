package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/production-scheduler/internal/model"
)

type LineRepository interface {
	// Создать линию.
	Create(ctx context.Context, line *model.Line) error
	// Найти линию по ID; gorm.ErrRecordNotFound, если нет.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Line, error)
	// Сохранить все поля линии.
	Update(ctx context.Context, line *model.Line) error
	// Линии в порядке отображения.
	List(ctx context.Context, activeOnly bool) ([]model.Line, error)
	// Есть ли другая активная линия с таким именем.
	ActiveNameTaken(ctx context.Context, name string, exceptID uuid.UUID) (bool, error)
}

type GormLineRepository struct {
	db *gorm.DB
}

func NewGormLineRepository(db *gorm.DB) *GormLineRepository {
	return &GormLineRepository{db: db}
}

func (r *GormLineRepository) Create(ctx context.Context, line *model.Line) error {
	return translate(r.db.WithContext(ctx).Create(line).Error)
}

func (r *GormLineRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Line, error) {
	var l model.Line
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *GormLineRepository) Update(ctx context.Context, line *model.Line) error {
	return translate(r.db.WithContext(ctx).
		Omit("Shifts", "Overrides").
		Save(line).Error)
}

func (r *GormLineRepository) List(ctx context.Context, activeOnly bool) ([]model.Line, error) {
	var lines []model.Line
	q := r.db.WithContext(ctx).Model(&model.Line{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Order("order_position ASC").Order("name ASC").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *GormLineRepository) ActiveNameTaken(ctx context.Context, name string, exceptID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Line{}).
		Where("name = ? AND active = ? AND id <> ?", name, true, exceptID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
