package capacity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Leganyst/production-scheduler/internal/calendar"
)

// Source — откуда взялись часы дня.
type Source string

const (
	SourceDefault  Source = "default"
	SourceOverride Source = "override"
)

type WarningKind string

// Чистые часы смены ушли в минус и были обнулены.
const WarningShiftHoursClamped WarningKind = "ShiftHoursClamped"

type Warning struct {
	Kind    WarningKind `json:"kind"`
	ShiftID uuid.UUID   `json:"shift_id"`
	Message string      `json:"message"`
}

// ShiftContribution — вклад одной смены в день.
type ShiftContribution struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	ShiftNumber int                `json:"shift_number"`
	Start       calendar.TimeOfDay `json:"start"`
	End         calendar.TimeOfDay `json:"end"`
	NetHours    decimal.Decimal    `json:"net_hours"`
	Active      bool               `json:"active"`
}

// EffectiveDay — рассчитанная мощность линии на одну дату.
// Для Source == SourceOverride список Shifts пуст, OverrideID заполнен.
type EffectiveDay struct {
	Date       calendar.Date       `json:"date"`
	Hours      decimal.Decimal     `json:"hours"`
	Source     Source              `json:"source"`
	OverrideID *uuid.UUID          `json:"override_id,omitempty"`
	Reason     string              `json:"reason,omitempty"`
	Shifts     []ShiftContribution `json:"shifts"`
	Warnings   []Warning           `json:"warnings,omitempty"`
}

func (d EffectiveDay) IsOverride() bool { return d.Source == SourceOverride }

func (d EffectiveDay) clone() EffectiveDay {
	out := d
	if d.OverrideID != nil {
		id := *d.OverrideID
		out.OverrideID = &id
	}
	out.Shifts = append([]ShiftContribution{}, d.Shifts...)
	if d.Warnings != nil {
		out.Warnings = append([]Warning(nil), d.Warnings...)
	}
	return out
}

func cloneDays(days []EffectiveDay) []EffectiveDay {
	out := make([]EffectiveDay, len(days))
	for i, d := range days {
		out[i] = d.clone()
	}
	return out
}

//
// Хранимые сущности в терминах движка
//

type Line struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	DefaultHoursPerDay  decimal.Decimal `json:"default_hours_per_day"`
	DefaultHoursPerWeek decimal.Decimal `json:"default_hours_per_week"`
	Active              bool            `json:"active"`
	OrderPosition       int             `json:"order_position"`
	SpecialCustomerName string          `json:"special_customer_name,omitempty"`
	TimeZone            string          `json:"time_zone"`
}

type Break struct {
	ID      uuid.UUID          `json:"id"`
	ShiftID uuid.UUID          `json:"shift_id"`
	Name    string             `json:"name"`
	Start   calendar.TimeOfDay `json:"start"`
	End     calendar.TimeOfDay `json:"end"`
	IsPaid  bool               `json:"is_paid"`
}

type Shift struct {
	ID          uuid.UUID           `json:"id"`
	LineID      uuid.UUID           `json:"line_id"`
	Name        string              `json:"name"`
	ShiftNumber int                 `json:"shift_number"`
	Start       calendar.TimeOfDay  `json:"start"`
	End         calendar.TimeOfDay  `json:"end"`
	ActiveDays  calendar.WeekdaySet `json:"active_days"`
	Active      bool                `json:"active"`
	Breaks      []Break             `json:"breaks"`
}

// NetSeconds — длительность смены минус неоплачиваемые перерывы. Может быть < 0.
func (s Shift) NetSeconds() int {
	net := calendar.DurationSeconds(s.Start, s.End)
	for _, b := range s.Breaks {
		if !b.IsPaid {
			net -= calendar.DurationSeconds(b.Start, b.End)
		}
	}
	return net
}

type Override struct {
	ID          uuid.UUID       `json:"id"`
	LineID      uuid.UUID       `json:"line_id"`
	StartDate   calendar.Date   `json:"start_date"`
	EndDate     calendar.Date   `json:"end_date"`
	TotalHours  decimal.Decimal `json:"total_hours"`
	Reason      string          `json:"reason"`
	ShiftConfig json.RawMessage `json:"shift_config,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Span — end_date - start_date в днях.
func (o Override) Span() int { return o.StartDate.DaysUntil(o.EndDate) }

func (o Override) Covers(d calendar.Date) bool {
	return !d.Before(o.StartDate) && !d.After(o.EndDate)
}

//
// Входные данные мутаций
//

type LineSpec struct {
	Name                string
	DefaultHoursPerDay  decimal.Decimal
	DefaultHoursPerWeek decimal.Decimal
	OrderPosition       int
	SpecialCustomerName string
	TimeZone            string
}

type LinePatch struct {
	Name                *string
	DefaultHoursPerDay  *decimal.Decimal
	DefaultHoursPerWeek *decimal.Decimal
	OrderPosition       *int
	SpecialCustomerName *string
	TimeZone            *string
	Active              *bool
}

type BreakSpec struct {
	Name   string
	Start  calendar.TimeOfDay
	End    calendar.TimeOfDay
	IsPaid bool
}

type ShiftSpec struct {
	Name        string
	ShiftNumber int
	Start       calendar.TimeOfDay
	End         calendar.TimeOfDay
	ActiveDays  calendar.WeekdaySet
	Active      bool
	Breaks      []BreakSpec
}

type ShiftPatch struct {
	Name        *string
	ShiftNumber *int
	Start       *calendar.TimeOfDay
	End         *calendar.TimeOfDay
	ActiveDays  *calendar.WeekdaySet
	Active      *bool
}

type OverrideSpec struct {
	StartDate   calendar.Date
	EndDate     calendar.Date
	TotalHours  decimal.Decimal
	Reason      string
	ShiftConfig json.RawMessage
}

type OverridePatch struct {
	StartDate   *calendar.Date
	EndDate     *calendar.Date
	TotalHours  *decimal.Decimal
	Reason      *string
	ShiftConfig *json.RawMessage
}
