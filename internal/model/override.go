package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// capacity_overrides — замена мощности линии на диапазоне дат [StartDate, EndDate].
// Диапазоны одной линии могут пересекаться.
type CapacityOverride struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	LineID uuid.UUID `gorm:"type:uuid;not null;index:idx_override_line_dates,priority:1"`

	StartDate datatypes.Date `gorm:"type:date;not null;index:idx_override_line_dates,priority:2"`
	EndDate   datatypes.Date `gorm:"type:date;not null;index:idx_override_line_dates,priority:3"`

	// Ноль — линия закрыта.
	TotalHours decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	Reason string `gorm:"type:text"`

	// Произвольный JSON из UI, расчётом не интерпретируется.
	ShiftConfig datatypes.JSON

	// Выставляется стором явно: по нему разрешаются равные по длине диапазоны.
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`

	Line *Line `gorm:"foreignKey:LineID"`
}

func (o *CapacityOverride) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = newID()
	}
	return nil
}
