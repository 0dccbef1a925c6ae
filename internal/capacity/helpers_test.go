package capacity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/config"
	"github.com/Leganyst/production-scheduler/internal/db/dbtest"
)

// stepClock каждый вызов сдвигается на секунду: created_at строго растёт.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *stepClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestEngine(t *testing.T, tweak ...func(*config.EngineConfig)) *Engine {
	t.Helper()
	cfg := config.DefaultEngineConfig()
	for _, fn := range tweak {
		fn(&cfg)
	}
	return NewEngine(dbtest.New(t), cfg, WithClock(newStepClock().now))
}

func mustLine(t *testing.T, e *Engine, name string) uuid.UUID {
	t.Helper()
	l, err := e.CreateLine(context.Background(), LineSpec{Name: name})
	if err != nil {
		t.Fatalf("create line %q: %v", name, err)
	}
	return l.ID
}

func mustShift(t *testing.T, e *Engine, lineID uuid.UUID, spec ShiftSpec) uuid.UUID {
	t.Helper()
	id, err := e.CreateShift(context.Background(), lineID, spec)
	if err != nil {
		t.Fatalf("create shift %q: %v", spec.Name, err)
	}
	return id
}

func mustOverride(t *testing.T, e *Engine, lineID uuid.UUID, from, to string, hours string, reason string) uuid.UUID {
	t.Helper()
	id, err := e.CreateOverride(context.Background(), lineID, OverrideSpec{
		StartDate:  day(t, from),
		EndDate:    day(t, to),
		TotalHours: hrs(hours),
		Reason:     reason,
	})
	if err != nil {
		t.Fatalf("create override %s..%s: %v", from, to, err)
	}
	return id
}

func day(t *testing.T, s string) calendar.Date {
	t.Helper()
	d, err := calendar.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func hrs(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tod(s string) calendar.TimeOfDay { return calendar.MustTimeOfDay(s) }

// dayShiftSpec — дневная смена 07:30–16:30 пн–пт с неоплачиваемым обедом.
func dayShiftSpec() ShiftSpec {
	return ShiftSpec{
		Name:        "Day",
		ShiftNumber: 1,
		Start:       tod("07:30"),
		End:         tod("16:30"),
		ActiveDays:  calendar.Weekdays,
		Active:      true,
		Breaks: []BreakSpec{
			{Name: "Lunch", Start: tod("12:00"), End: tod("12:30")},
		},
	}
}

func expectHours(t *testing.T, d EffectiveDay, want string, source Source) {
	t.Helper()
	if !d.Hours.Equal(hrs(want)) {
		t.Fatalf("%s: hours = %s, want %s", d.Date, d.Hours, want)
	}
	if d.Source != source {
		t.Fatalf("%s: source = %s, want %s", d.Date, d.Source, source)
	}
}

// sameDay сравнивает дни по всем полям; часы — по значению.
func sameDay(a, b EffectiveDay) bool {
	if !a.Date.Equal(b.Date) || !a.Hours.Equal(b.Hours) || a.Source != b.Source || a.Reason != b.Reason {
		return false
	}
	if (a.OverrideID == nil) != (b.OverrideID == nil) {
		return false
	}
	if a.OverrideID != nil && *a.OverrideID != *b.OverrideID {
		return false
	}
	if len(a.Shifts) != len(b.Shifts) || len(a.Warnings) != len(b.Warnings) {
		return false
	}
	for i := range a.Shifts {
		x, y := a.Shifts[i], b.Shifts[i]
		if x.ID != y.ID || x.Name != y.Name || x.ShiftNumber != y.ShiftNumber ||
			x.Start != y.Start || x.End != y.End || x.Active != y.Active || !x.NetHours.Equal(y.NetHours) {
			return false
		}
	}
	for i := range a.Warnings {
		if a.Warnings[i] != b.Warnings[i] {
			return false
		}
	}
	return true
}
