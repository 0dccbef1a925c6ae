package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/model"
	"github.com/Leganyst/production-scheduler/internal/placement"
	"github.com/Leganyst/production-scheduler/internal/reconcile"
)

// ====================
// ERP
// ====================

type ChangeRequest struct {
	WONumber       string     `json:"wo_number" validate:"required,max=64"`
	ChangeType     string     `json:"change_type" validate:"required,oneof=created date_changed qty_changed location_changed material_changed"`
	FieldName      string     `json:"field_name" validate:"max=64"`
	OldValue       string     `json:"old_value"`
	NewValue       string     `json:"new_value"`
	CetecOrdlineID *int64     `json:"cetec_ordline_id"`
	OccurredAt     *time.Time `json:"occurred_at"`
}

func (r ChangeRequest) ToChange() reconcile.Change {
	c := reconcile.Change{
		WONumber:       r.WONumber,
		Type:           model.ChangeType(r.ChangeType),
		FieldName:      r.FieldName,
		OldValue:       r.OldValue,
		NewValue:       r.NewValue,
		CetecOrdlineID: r.CetecOrdlineID,
	}
	if r.OccurredAt != nil {
		c.OccurredAt = *r.OccurredAt
	}
	return c
}

type WorkOrderRequest struct {
	WONumber        string          `json:"wo_number" validate:"required,max=64"`
	Customer        string          `json:"customer" validate:"required,max=255"`
	Assembly        string          `json:"assembly" validate:"required,max=255"`
	Revision        string          `json:"revision" validate:"max=64"`
	Quantity        int             `json:"quantity" validate:"min=0"`
	TimeMinutes     decimal.Decimal `json:"time_minutes"`
	SetupTimeHours  decimal.Decimal `json:"setup_time_hours"`
	CetecShipDate   *calendar.Date  `json:"cetec_ship_date"`
	CetecOrdlineID  *int64          `json:"cetec_ordline_id"`
	CurrentLocation string          `json:"current_location" validate:"max=128"`
	MaterialStatus  string          `json:"material_status" validate:"max=64"`
	LineID          *uuid.UUID      `json:"line_id"`
	LinePosition    int             `json:"line_position" validate:"min=0"`
}

func (r WorkOrderRequest) ToModel() *model.WorkOrder {
	wo := &model.WorkOrder{
		WONumber:        r.WONumber,
		Customer:        r.Customer,
		Assembly:        r.Assembly,
		Revision:        r.Revision,
		Quantity:        r.Quantity,
		TimeMinutes:     r.TimeMinutes,
		SetupTimeHours:  r.SetupTimeHours,
		CetecOrdlineID:  r.CetecOrdlineID,
		CurrentLocation: r.CurrentLocation,
		MaterialStatus:  r.MaterialStatus,
		LineID:          r.LineID,
		LinePosition:    r.LinePosition,
	}
	if r.CetecShipDate != nil {
		wo.CetecShipDate = model.DatePtr(*r.CetecShipDate)
	}
	return wo
}

// ====================
// Раскладка
// ====================

type PlacementDTO struct {
	WorkOrderID uuid.UUID       `json:"work_order_id"`
	Day         calendar.Date   `json:"day"`
	Hours       decimal.Decimal `json:"hours"`
}

func ToPlacementDTOs(rows []model.Placement) []PlacementDTO {
	out := make([]PlacementDTO, 0, len(rows))
	for _, p := range rows {
		out = append(out, PlacementDTO{
			WorkOrderID: p.WorkOrderID,
			Day:         model.CalendarDate(p.Day),
			Hours:       p.Hours,
		})
	}
	return out
}

type PlaceLineResponse struct {
	LineID      uuid.UUID              `json:"line_id"`
	Anchor      calendar.Date          `json:"anchor"`
	Assignments []placement.Assignment `json:"assignments"`
}

type LatestStartResponse struct {
	LineID      uuid.UUID       `json:"line_id"`
	DueDate     calendar.Date   `json:"due_date"`
	Hours       decimal.Decimal `json:"hours"`
	LatestStart calendar.Date   `json:"latest_start"`
}
