package dto

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/capacity"
)

// ====================
// Response DTO
// ====================

// DayResponse — мощность дня в транспортном виде.
type DayResponse struct {
	Date        calendar.Date                `json:"date"`
	Hours       decimal.Decimal              `json:"hours"`
	Source      capacity.Source              `json:"source"`
	IsOverride  bool                         `json:"is_override"`
	IsDefault   bool                         `json:"is_default"`
	OverrideID  *uuid.UUID                   `json:"override_id"`
	Reason      string                       `json:"reason"`
	ShiftsCount int                          `json:"shifts_count"`
	Shifts      []capacity.ShiftContribution `json:"shifts"`
	Warnings    []capacity.Warning           `json:"warnings"`
}

type CalendarResponse struct {
	LineID     uuid.UUID       `json:"line_id"`
	StartDate  calendar.Date   `json:"start_date"`
	Days       []DayResponse   `json:"days"`
	TotalHours decimal.Decimal `json:"total_hours"`
}

func ToDayResponse(d capacity.EffectiveDay) DayResponse {
	warnings := d.Warnings
	if warnings == nil {
		warnings = []capacity.Warning{}
	}
	return DayResponse{
		Date:        d.Date,
		Hours:       d.Hours,
		Source:      d.Source,
		IsOverride:  d.IsOverride(),
		IsDefault:   !d.IsOverride(),
		OverrideID:  d.OverrideID,
		Reason:      d.Reason,
		ShiftsCount: len(d.Shifts),
		Shifts:      d.Shifts,
		Warnings:    warnings,
	}
}

func ToCalendarResponse(lineID uuid.UUID, start calendar.Date, days []capacity.EffectiveDay) CalendarResponse {
	out := CalendarResponse{
		LineID:     lineID,
		StartDate:  start,
		Days:       make([]DayResponse, 0, len(days)),
		TotalHours: decimal.Zero,
	}
	for _, d := range days {
		out.Days = append(out.Days, ToDayResponse(d))
		out.TotalHours = out.TotalHours.Add(d.Hours)
	}
	return out
}

// ====================
// Request DTO: смены
// ====================

type BreakRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	IsPaid    bool   `json:"is_paid"`
}

type CreateShiftRequest struct {
	Name        string         `json:"name" validate:"required,max=100"`
	ShiftNumber int            `json:"shift_number" validate:"min=0"`
	StartTime   string         `json:"start_time" validate:"required"`
	EndTime     string         `json:"end_time" validate:"required"`
	ActiveDays  []int          `json:"active_days" validate:"dive,min=1,max=7"`
	Active      *bool          `json:"active"`
	Breaks      []BreakRequest `json:"breaks" validate:"dive"`
}

type UpdateShiftRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	ShiftNumber *int    `json:"shift_number" validate:"omitempty,min=0"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	ActiveDays  *[]int  `json:"active_days"`
	Active      *bool   `json:"active"`
}

func parseTime(field, raw string) (calendar.TimeOfDay, error) {
	v, err := calendar.ParseTOD(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", capacity.ErrInvalid, field, err)
	}
	return v, nil
}

func parseDays(days []int) (calendar.WeekdaySet, error) {
	set, err := calendar.NewWeekdaySet(days...)
	if err != nil {
		return 0, fmt.Errorf("%w: active_days: %v", capacity.ErrInvalid, err)
	}
	return set, nil
}

func (r BreakRequest) ToSpec() (capacity.BreakSpec, error) {
	start, err := parseTime("start_time", r.StartTime)
	if err != nil {
		return capacity.BreakSpec{}, err
	}
	end, err := parseTime("end_time", r.EndTime)
	if err != nil {
		return capacity.BreakSpec{}, err
	}
	return capacity.BreakSpec{Name: r.Name, Start: start, End: end, IsPaid: r.IsPaid}, nil
}

func (r CreateShiftRequest) ToSpec() (capacity.ShiftSpec, error) {
	start, err := parseTime("start_time", r.StartTime)
	if err != nil {
		return capacity.ShiftSpec{}, err
	}
	end, err := parseTime("end_time", r.EndTime)
	if err != nil {
		return capacity.ShiftSpec{}, err
	}
	days, err := parseDays(r.ActiveDays)
	if err != nil {
		return capacity.ShiftSpec{}, err
	}

	spec := capacity.ShiftSpec{
		Name:        r.Name,
		ShiftNumber: r.ShiftNumber,
		Start:       start,
		End:         end,
		ActiveDays:  days,
		Active:      r.Active == nil || *r.Active,
	}
	for _, b := range r.Breaks {
		bs, err := b.ToSpec()
		if err != nil {
			return capacity.ShiftSpec{}, err
		}
		spec.Breaks = append(spec.Breaks, bs)
	}
	return spec, nil
}

func (r UpdateShiftRequest) ToPatch() (capacity.ShiftPatch, error) {
	p := capacity.ShiftPatch{
		Name:        r.Name,
		ShiftNumber: r.ShiftNumber,
		Active:      r.Active,
	}
	if r.StartTime != nil {
		v, err := parseTime("start_time", *r.StartTime)
		if err != nil {
			return p, err
		}
		p.Start = &v
	}
	if r.EndTime != nil {
		v, err := parseTime("end_time", *r.EndTime)
		if err != nil {
			return p, err
		}
		p.End = &v
	}
	if r.ActiveDays != nil {
		set, err := parseDays(*r.ActiveDays)
		if err != nil {
			return p, err
		}
		p.ActiveDays = &set
	}
	return p, nil
}

// ====================
// Request DTO: переопределения
// ====================

type CreateOverrideRequest struct {
	StartDate   calendar.Date   `json:"start_date"`
	EndDate     calendar.Date   `json:"end_date"`
	TotalHours  decimal.Decimal `json:"total_hours"`
	Reason      string          `json:"reason" validate:"max=255"`
	ShiftConfig json.RawMessage `json:"shift_config,omitempty"`
}

type UpdateOverrideRequest struct {
	StartDate   *calendar.Date   `json:"start_date"`
	EndDate     *calendar.Date   `json:"end_date"`
	TotalHours  *decimal.Decimal `json:"total_hours"`
	Reason      *string          `json:"reason" validate:"omitempty,max=255"`
	ShiftConfig *json.RawMessage `json:"shift_config"`
}

type OvertimeRequest struct {
	Date       calendar.Date   `json:"date"`
	ExtraHours decimal.Decimal `json:"extra_hours"`
	Reason     string          `json:"reason" validate:"max=255"`
}

func (r CreateOverrideRequest) ToSpec() capacity.OverrideSpec {
	return capacity.OverrideSpec{
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		TotalHours:  r.TotalHours,
		Reason:      r.Reason,
		ShiftConfig: r.ShiftConfig,
	}
}

func (r UpdateOverrideRequest) ToPatch() capacity.OverridePatch {
	return capacity.OverridePatch{
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		TotalHours:  r.TotalHours,
		Reason:      r.Reason,
		ShiftConfig: r.ShiftConfig,
	}
}
