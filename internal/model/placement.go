package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// placements — сколько часов заказа приходится на конкретный день линии.
type Placement struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	WorkOrderID uuid.UUID      `gorm:"type:uuid;not null;index"`
	LineID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_placement_line_day,priority:1"`
	Day         datatypes.Date `gorm:"type:date;not null;index:idx_placement_line_day,priority:2"`

	Hours decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	CreatedAt time.Time `gorm:"not null"`
}

func (p *Placement) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = newID()
	}
	return nil
}
