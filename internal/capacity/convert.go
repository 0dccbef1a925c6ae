package capacity

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/model"
)

func lineFromModel(m *model.Line) Line {
	l := Line{
		ID:                  m.ID,
		Name:                m.Name,
		DefaultHoursPerDay:  m.DefaultHoursPerDay,
		DefaultHoursPerWeek: m.DefaultHoursPerWeek,
		Active:              m.Active,
		OrderPosition:       m.OrderPosition,
		TimeZone:            m.TimeZone,
	}
	if m.SpecialCustomerName != nil {
		l.SpecialCustomerName = *m.SpecialCustomerName
	}
	return l
}

func breakFromModel(m *model.ShiftBreak) Break {
	return Break{
		ID:      m.ID,
		ShiftID: m.ShiftID,
		Name:    m.Name,
		Start:   model.TimeOfDay(m.StartTime),
		End:     model.TimeOfDay(m.EndTime),
		IsPaid:  m.IsPaid,
	}
}

// shiftFromModel: active_days в БД всегда каноническая строка,
// поэтому ошибка разбора означает порчу данных.
func shiftFromModel(m *model.ShiftTemplate) (Shift, error) {
	days, err := calendar.ParseWeekdaySet(m.ActiveDays)
	if err != nil {
		return Shift{}, err
	}
	s := Shift{
		ID:          m.ID,
		LineID:      m.LineID,
		Name:        m.Name,
		ShiftNumber: m.ShiftNumber,
		Start:       model.TimeOfDay(m.StartTime),
		End:         model.TimeOfDay(m.EndTime),
		ActiveDays:  days,
		Active:      m.Active,
		Breaks:      make([]Break, 0, len(m.Breaks)),
	}
	for i := range m.Breaks {
		s.Breaks = append(s.Breaks, breakFromModel(&m.Breaks[i]))
	}
	return s, nil
}

func shiftsFromModel(ms []model.ShiftTemplate) ([]Shift, error) {
	out := make([]Shift, 0, len(ms))
	for i := range ms {
		s, err := shiftFromModel(&ms[i])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func overrideFromModel(m *model.CapacityOverride) Override {
	o := Override{
		ID:         m.ID,
		LineID:     m.LineID,
		StartDate:  model.CalendarDate(m.StartDate),
		EndDate:    model.CalendarDate(m.EndDate),
		TotalHours: m.TotalHours,
		Reason:     m.Reason,
		CreatedAt:  m.CreatedAt,
	}
	if len(m.ShiftConfig) > 0 {
		o.ShiftConfig = json.RawMessage(append([]byte(nil), m.ShiftConfig...))
	}
	return o
}

func overridesFromModel(ms []model.CapacityOverride) []Override {
	out := make([]Override, 0, len(ms))
	for i := range ms {
		out = append(out, overrideFromModel(&ms[i]))
	}
	return out
}

func jsonColumn(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 {
		return nil
	}
	return datatypes.JSON(append([]byte(nil), raw...))
}
