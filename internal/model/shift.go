package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// shift_templates — недельный шаблон смены линии.
// Если EndTime <= StartTime, смена заканчивается на следующие сутки.
type ShiftTemplate struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	LineID uuid.UUID `gorm:"type:uuid;not null;index"`

	Name        string `gorm:"type:varchar(128);not null"`
	ShiftNumber int    `gorm:"not null"`

	StartTime datatypes.Time `gorm:"type:time;not null"`
	EndTime   datatypes.Time `gorm:"type:time;not null"`

	// ISO-дни недели в канонической форме "1,2,3,4,5".
	ActiveDays string `gorm:"type:varchar(16);not null"`

	Active bool `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Line   *Line        `gorm:"foreignKey:LineID"`
	Breaks []ShiftBreak `gorm:"foreignKey:ShiftID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (s *ShiftTemplate) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = newID()
	}
	return nil
}

// shift_breaks — перерывы внутри смены.
type ShiftBreak struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	ShiftID uuid.UUID `gorm:"type:uuid;not null;index"`

	Name      string         `gorm:"type:varchar(128);not null"`
	StartTime datatypes.Time `gorm:"type:time;not null"`
	EndTime   datatypes.Time `gorm:"type:time;not null"`
	IsPaid    bool           `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
}

func (b *ShiftBreak) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = newID()
	}
	return nil
}
