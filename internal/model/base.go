package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Leganyst/production-scheduler/internal/calendar"
)

// newID выдаёт UUIDv7: идентификаторы растут во времени,
// поэтому "больший id" означает "создан позже".
func newID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// DateOf переводит календарную дату в колонку type:date.
// Значение всегда полночь UTC, чтобы сравнения в БД были однородными.
func DateOf(d calendar.Date) datatypes.Date {
	return datatypes.Date(d.Time())
}

func DatePtr(d calendar.Date) *datatypes.Date {
	if d.IsZero() {
		return nil
	}
	v := DateOf(d)
	return &v
}

// CalendarDate — обратное преобразование.
func CalendarDate(d datatypes.Date) calendar.Date {
	return calendar.DateOf(time.Time(d))
}

func CalendarDatePtr(d *datatypes.Date) calendar.Date {
	if d == nil {
		return calendar.Date{}
	}
	return CalendarDate(*d)
}

func TimeOf(t calendar.TimeOfDay) datatypes.Time {
	h, m, s := t.Clock()
	return datatypes.NewTime(h, m, s, 0)
}

func TimeOfDay(t datatypes.Time) calendar.TimeOfDay {
	secs := int(time.Duration(t) / time.Second)
	return calendar.TimeOfDay(secs % calendar.SecondsPerDay)
}
