package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Локация, в которой заказ стоит в очереди SMT.
const LocationSMTProduction = "SMT PRODUCTION"

// work_orders — заказы из ERP, которые раскладываются по дням линии.
type WorkOrder struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	WONumber string `gorm:"column:wo_number;type:varchar(64);not null;uniqueIndex"`

	Customer string `gorm:"type:varchar(255);not null"`
	Assembly string `gorm:"type:varchar(255);not null"`
	Revision string `gorm:"type:varchar(64)"`
	Quantity int    `gorm:"not null"`

	// Время сборки в минутах и наладка в часах.
	TimeMinutes    decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	SetupTimeHours decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	CetecShipDate   *datatypes.Date `gorm:"type:date"`
	CetecOrdlineID  *int64          `gorm:"index"`
	CurrentLocation string          `gorm:"type:varchar(128)"`
	MaterialStatus  string          `gorm:"type:varchar(64)"`

	LineID       *uuid.UUID `gorm:"type:uuid;index"`
	LinePosition int        `gorm:"not null"`

	// Выставляется при изменениях из ERP, снимается после раскладки.
	NeedsPlacement bool `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Line       *Line       `gorm:"foreignKey:LineID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Placements []Placement `gorm:"foreignKey:WorkOrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (w *WorkOrder) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = newID()
	}
	return nil
}

var minutesPerHour = decimal.NewFromInt(60)

// Hours — оценка длительности: time_minutes/60 + setup_time_hours.
func (w *WorkOrder) Hours() decimal.Decimal {
	return w.TimeMinutes.Div(minutesPerHour).Add(w.SetupTimeHours)
}
