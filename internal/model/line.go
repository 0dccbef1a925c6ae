package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// lines — производственные линии (SMT / жгуты).
// Не удаляются физически, только деактивируются.
type Line struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	// Уникально среди активных линий; проверяется в сторе.
	Name string `gorm:"type:varchar(128);not null;index"`

	// Информационные значения, в расчёт мощности не входят.
	DefaultHoursPerDay  decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	DefaultHoursPerWeek decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	Active        bool   `gorm:"not null;index"`
	OrderPosition int    `gorm:"not null"`
	TimeZone      string `gorm:"type:varchar(64);not null"`

	SpecialCustomerName *string `gorm:"type:varchar(255)"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Shifts    []ShiftTemplate    `gorm:"foreignKey:LineID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Overrides []CapacityOverride `gorm:"foreignKey:LineID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (l *Line) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = newID()
	}
	return nil
}
