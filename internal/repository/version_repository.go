package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Leganyst/production-scheduler/internal/model"
)

// Versions — пара счётчиков, по которой проверяется согласованность снимка.
type Versions struct {
	Shifts    int64
	Overrides int64
}

type VersionRepository interface {
	Get(ctx context.Context) (Versions, error)
	// Bump увеличивает счётчик name на единицу.
	Bump(ctx context.Context, name string) error
}

type GormVersionRepository struct {
	db *gorm.DB
}

func NewGormVersionRepository(db *gorm.DB) *GormVersionRepository {
	return &GormVersionRepository{db: db}
}

func (r *GormVersionRepository) Get(ctx context.Context) (Versions, error) {
	var rows []model.StoreVersion
	err := r.db.WithContext(ctx).
		Where("name IN ?", []string{model.VersionShiftTemplates, model.VersionCapacityOverrides}).
		Find(&rows).Error
	if err != nil {
		return Versions{}, err
	}

	var v Versions
	for _, row := range rows {
		switch row.Name {
		case model.VersionShiftTemplates:
			v.Shifts = row.Version
		case model.VersionCapacityOverrides:
			v.Overrides = row.Version
		}
	}
	return v, nil
}

func (r *GormVersionRepository) Bump(ctx context.Context, name string) error {
	res := r.db.WithContext(ctx).
		Model(&model.StoreVersion{}).
		Where("name = ?", name).
		Update("version", gorm.Expr("version + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("store version %q is not initialised", name)
	}
	return nil
}
