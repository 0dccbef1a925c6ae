package capacity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/config"
)

// Перерывы, превышающие смену, можно получить только в обход стора,
// поэтому отрицательные смены проверяются на чистой функции.
func brokenShift() Shift {
	return Shift{
		ID:         uuid.New(),
		Name:       "Broken",
		Start:      tod("08:00"),
		End:        tod("09:00"),
		ActiveDays: calendar.Weekdays,
		Active:     true,
		Breaks: []Break{
			{Name: "A", Start: tod("08:00"), End: tod("09:00")},
			{Name: "B", Start: tod("08:00"), End: tod("08:30")},
		},
	}
}

func regularShift() Shift {
	return Shift{
		ID:         uuid.New(),
		Name:       "Regular",
		Start:      tod("10:00"),
		End:        tod("12:00"),
		ActiveDays: calendar.Weekdays,
		Active:     true,
	}
}

func TestResolveDay_ClampNegativeShift(t *testing.T) {
	monday := day(t, "2024-01-01")
	broken := brokenShift()

	d := resolveDay(monday, []Shift{broken, regularShift()}, nil, resolveOptions{clampNegative: true})
	expectHours(t, d, "2", SourceDefault)
	if len(d.Warnings) != 1 || d.Warnings[0].Kind != WarningShiftHoursClamped || d.Warnings[0].ShiftID != broken.ID {
		t.Fatalf("expected one clamp warning, got %+v", d.Warnings)
	}
	if !d.Shifts[0].NetHours.IsZero() {
		t.Fatalf("clamped shift must contribute 0, got %s", d.Shifts[0].NetHours)
	}
}

func TestResolveDay_NoClamp(t *testing.T) {
	monday := day(t, "2024-01-01")

	d := resolveDay(monday, []Shift{brokenShift(), regularShift()}, nil, resolveOptions{})
	expectHours(t, d, "1.5", SourceDefault)
	if len(d.Warnings) != 0 {
		t.Fatalf("no warnings expected without clamping, got %+v", d.Warnings)
	}
	if !d.Shifts[0].NetHours.Equal(hrs("-0.5")) {
		t.Fatalf("unclamped net = %s, want -0.5", d.Shifts[0].NetHours)
	}

	// итог дня всё равно не уходит ниже нуля
	d = resolveDay(monday, []Shift{brokenShift()}, nil, resolveOptions{})
	expectHours(t, d, "0", SourceDefault)
}

func TestResolveDay_InactiveShiftsDebug(t *testing.T) {
	monday := day(t, "2024-01-01")
	idle := regularShift()
	idle.Active = false

	d := resolveDay(monday, []Shift{idle}, nil, resolveOptions{clampNegative: true})
	if len(d.Shifts) != 0 {
		t.Fatalf("inactive shift listed without debug flag: %+v", d.Shifts)
	}

	d = resolveDay(monday, []Shift{idle}, nil, resolveOptions{clampNegative: true, debugInactive: true})
	expectHours(t, d, "0", SourceDefault)
	if len(d.Shifts) != 1 || d.Shifts[0].Active || !d.Shifts[0].NetHours.IsZero() {
		t.Fatalf("expected inactive contribution with zero hours, got %+v", d.Shifts)
	}
}

func TestPickOverride(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(from, to string, created time.Time) Override {
		return Override{
			ID:        uuid.Must(uuid.NewV7()),
			StartDate: day(t, from),
			EndDate:   day(t, to),
			CreatedAt: created,
		}
	}
	broadNew := mk("2024-01-01", "2024-01-07", base.Add(time.Hour))
	narrowOld := mk("2024-01-03", "2024-01-04", base)
	narrowNew := mk("2024-01-03", "2024-01-04", base.Add(time.Minute))
	overrides := []Override{broadNew, narrowNew, narrowOld}

	if got := pickOverride(day(t, "2024-01-03"), overrides); got.ID != narrowNew.ID {
		t.Fatalf("expected narrow newer override, got %+v", got)
	}
	if got := pickOverride(day(t, "2024-01-06"), overrides); got.ID != broadNew.ID {
		t.Fatalf("expected broad override, got %+v", got)
	}
	if got := pickOverride(day(t, "2024-01-08"), overrides); got != nil {
		t.Fatalf("expected no override, got %+v", got)
	}
}

func TestCalendar_Errors(t *testing.T) {
	e := newTestEngine(t, func(c *config.EngineConfig) { c.MaxCalendarDays = 100 })
	ctx := context.Background()
	line := mustLine(t, e, "Line 1")

	if _, err := e.GetCalendar(ctx, uuid.New(), day(t, "2024-01-01"), 7); !errors.Is(err, ErrLineNotFound) {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}
	if _, err := e.GetCalendar(ctx, line, day(t, "2024-01-01"), -1); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for negative n, got %v", err)
	}
	if _, err := e.GetCalendar(ctx, line, calendar.Date{}, 7); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for missing date, got %v", err)
	}
	if _, err := e.GetCalendar(ctx, line, day(t, "2024-01-01"), 101); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid above limit, got %v", err)
	}
	if _, err := e.GetCalendar(ctx, uuid.Nil, day(t, "2024-01-01"), 7); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for nil line, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := e.GetCalendar(cancelled, line, day(t, "2024-01-01"), 7); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func TestDefaultCalendar(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	line := mustLine(t, e, "Line 1")

	days, err := e.DefaultCalendar(ctx, line, day(t, "2024-01-03"))
	if err != nil {
		t.Fatalf("default calendar: %v", err)
	}
	if len(days) != 56 || days[0].Date.String() != "2024-01-01" || days[55].Date.String() != "2024-02-25" {
		t.Fatalf("unexpected default calendar: %d days from %s", len(days), days[0].Date)
	}

	days, err = e.GetCalendar(ctx, line, day(t, "2024-01-01"), 0)
	if err != nil || len(days) != 56 {
		t.Fatalf("n=0 should mean the default length, got %d %v", len(days), err)
	}
}

func TestMemo(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	line := mustLine(t, e, "Line 1")
	mustShift(t, e, line, dayShiftSpec())
	start := day(t, "2024-01-01")

	first, err := e.GetCalendar(ctx, line, start, 7)
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	first[0].Shifts[0].Name = "mutated"
	first[0].Hours = hrs("99")

	second, err := e.GetCalendar(ctx, line, start, 7)
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	if e.resolver.memo.len() != 1 {
		t.Fatalf("expected one memo entry, got %d", e.resolver.memo.len())
	}
	if second[0].Shifts[0].Name != "Day" || !second[0].Hours.Equal(hrs("8.5")) {
		t.Fatalf("memo must be isolated from callers: %+v", second[0])
	}

	mustOverride(t, e, line, "2024-01-01", "2024-01-01", "1", "")
	third, err := e.GetCalendar(ctx, line, start, 7)
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	expectHours(t, third[0], "1", SourceOverride)
	if e.resolver.memo.len() != 2 {
		t.Fatalf("write must produce a new memo key, got %d entries", e.resolver.memo.len())
	}
}

func TestMemo_Eviction(t *testing.T) {
	m := newMemo(2)
	k := func(n int) memoKey { return memoKey{n: n} }
	m.put(k(1), nil)
	m.put(k(2), nil)
	m.put(k(3), nil)
	if _, ok := m.get(k(1)); ok {
		t.Fatalf("oldest entry must be evicted")
	}
	if _, ok := m.get(k(3)); !ok {
		t.Fatalf("newest entry must be present")
	}
	if m.len() != 2 {
		t.Fatalf("expected 2 entries, got %d", m.len())
	}
}

// Отмена первого вызывающего не должна доставаться тем, кто присоединился к тому же расчёту.
func TestCalendar_SharedQuerySurvivesCallerCancel(t *testing.T) {
	e := newTestEngine(t)
	line := mustLine(t, e, "Line 1")
	mustShift(t, e, line, dayShiftSpec())
	start := day(t, "2024-01-01")

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	e.resolver.afterSnapshotRead = func() {
		once.Do(func() {
			close(entered)
			<-release
		})
	}

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := e.GetCalendar(leaderCtx, line, start, 7)
		leaderErr <- err
	}()
	<-entered

	type result struct {
		days []EffectiveDay
		err  error
	}
	follower := make(chan result, 1)
	go func() {
		days, err := e.GetCalendar(context.Background(), line, start, 7)
		follower <- result{days, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case err := <-leaderErr:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("leader: expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("leader did not return after cancel")
	}

	close(release)
	select {
	case res := <-follower:
		if res.err != nil {
			t.Fatalf("follower with live context failed: %v", res.err)
		}
		if len(res.days) != 7 || !res.days[0].Hours.Equal(decimal.RequireFromString("8.5")) {
			t.Fatalf("unexpected follower result: %+v", res.days)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("follower did not return")
	}
}
