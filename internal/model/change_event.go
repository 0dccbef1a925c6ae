package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Тип изменения записи в ERP.
type ChangeType string

const (
	ChangeCreated         ChangeType = "created"
	ChangeDateChanged     ChangeType = "date_changed"
	ChangeQtyChanged      ChangeType = "qty_changed"
	ChangeLocationChanged ChangeType = "location_changed"
	ChangeMaterialChanged ChangeType = "material_changed"
)

func (t ChangeType) Valid() bool {
	switch t {
	case ChangeCreated, ChangeDateChanged, ChangeQtyChanged, ChangeLocationChanged, ChangeMaterialChanged:
		return true
	}
	return false
}

// change_events — лента изменений из ERP.
// Обработанные события хранятся с ProcessedAt для аудита.
type ChangeEvent struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	WONumber   string     `gorm:"column:wo_number;type:varchar(64);not null;index" json:"wo_number"`
	ChangeType ChangeType `gorm:"type:varchar(32);not null;index" json:"change_type"`

	FieldName string `gorm:"type:varchar(64)" json:"field_name"`
	OldValue  string `gorm:"type:text" json:"old_value"`
	NewValue  string `gorm:"type:text" json:"new_value"`

	CetecOrdlineID *int64 `gorm:"index" json:"cetec_ordline_id"`

	// Когда изменение произошло в ERP.
	OccurredAt time.Time `gorm:"not null" json:"occurred_at"`

	ProcessedAt *time.Time `gorm:"index" json:"processed_at"`
	// Ошибка применения; событие при этом считается обработанным.
	Error string `gorm:"type:text" json:"error"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (e *ChangeEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = newID()
	}
	return nil
}
