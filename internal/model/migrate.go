package model

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AutoMigrate выполняет миграцию всех сущностей планировщика
// и заводит строки счётчиков версий.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Line{},
		&ShiftTemplate{},
		&ShiftBreak{},
		&CapacityOverride{},
		&StoreVersion{},
		&WorkOrder{},
		&Placement{},
		&ChangeEvent{},
	); err != nil {
		return err
	}

	seed := []StoreVersion{
		{Name: VersionShiftTemplates},
		{Name: VersionCapacityOverrides},
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error
}
