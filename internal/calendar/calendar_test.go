package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func mustTOD(t *testing.T, s string) TimeOfDay {
	t.Helper()
	v, err := ParseTOD(s)
	if err != nil {
		t.Fatalf("parse time %q: %v", s, err)
	}
	return v
}

func hours(s string) decimal.Decimal { return decimal.RequireFromString(s) }

//
// Даты и дни недели
//

func TestISOWeekday(t *testing.T) {
	cases := map[string]int{
		"2024-01-01": 1,
		"2024-01-03": 3,
		"2024-01-06": 6,
		"2024-01-07": 7,
	}
	for s, want := range cases {
		if got := ISOWeekday(mustDate(t, s)); got != want {
			t.Fatalf("ISOWeekday(%s) = %d, want %d", s, got, want)
		}
	}
}

func TestMondayOf(t *testing.T) {
	cases := map[string]string{
		"2024-01-01": "2024-01-01",
		"2024-01-04": "2024-01-01",
		"2024-01-07": "2024-01-01",
		"2024-01-08": "2024-01-08",
		"2024-03-01": "2024-02-26",
	}
	for in, want := range cases {
		if got := MondayOf(mustDate(t, in)).String(); got != want {
			t.Fatalf("MondayOf(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestWeekStartOf_Sunday(t *testing.T) {
	got := WeekStartOf(mustDate(t, "2024-01-03"), 7)
	if got.String() != "2023-12-31" {
		t.Fatalf("expected 2023-12-31, got %s", got)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, s := range []string{"", "2024-13-01", "01/02/2024", "2024-1-1"} {
		if _, err := ParseDate(s); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("ParseDate(%q): expected ErrInvalidDate, got %v", s, err)
		}
	}
}

func TestDate_DaysUntilAcrossLeapDay(t *testing.T) {
	from := mustDate(t, "2024-02-27")
	to := mustDate(t, "2024-03-02")
	if got := from.DaysUntil(to); got != 4 {
		t.Fatalf("expected 4 days, got %d", got)
	}
	if !from.AddDays(4).Equal(to) {
		t.Fatalf("AddDays(4) = %s, want %s", from.AddDays(4), to)
	}
}

func TestDateRange(t *testing.T) {
	r, err := NewDateRange(mustDate(t, "2024-01-01"), mustDate(t, "2024-01-05"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Span() != 4 {
		t.Fatalf("span = %d, want 4", r.Span())
	}
	if !r.Contains(mustDate(t, "2024-01-05")) || r.Contains(mustDate(t, "2024-01-06")) {
		t.Fatalf("contains is not inclusive on both ends")
	}
	other := DateRange{From: mustDate(t, "2024-01-05"), To: mustDate(t, "2024-01-09")}
	if !r.Overlaps(other) {
		t.Fatalf("expected ranges touching on 2024-01-05 to overlap")
	}

	if _, err := NewDateRange(mustDate(t, "2024-01-05"), mustDate(t, "2024-01-01")); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

//
// Время суток и длительности
//

func TestParseTimeOfDay(t *testing.T) {
	h, m, s, err := ParseTimeOfDay("07:30")
	if err != nil || h != 7 || m != 30 || s != 0 {
		t.Fatalf("ParseTimeOfDay(07:30) = %d %d %d %v", h, m, s, err)
	}
	h, m, s, err = ParseTimeOfDay("23:59:58")
	if err != nil || h != 23 || m != 59 || s != 58 {
		t.Fatalf("ParseTimeOfDay(23:59:58) = %d %d %d %v", h, m, s, err)
	}
	for _, bad := range []string{"", "7:30", "24:00", "12:60", "12:00:61", "noon", "12:00:00:00"} {
		if _, _, _, err := ParseTimeOfDay(bad); !errors.Is(err, ErrInvalidTimeOfDay) {
			t.Fatalf("ParseTimeOfDay(%q): expected ErrInvalidTimeOfDay, got %v", bad, err)
		}
	}
}

func TestDurationHours(t *testing.T) {
	cases := []struct {
		start, end string
		want       string
	}{
		{"07:30", "16:30", "9"},
		{"12:00", "12:30", "0.5"},
		{"22:00", "06:00", "8"},
		{"15:00", "23:00", "8"},
		{"23:45", "00:15", "0.5"},
	}
	for _, c := range cases {
		got := DurationHours(mustTOD(t, c.start), mustTOD(t, c.end))
		if !got.Equal(hours(c.want)) {
			t.Fatalf("DurationHours(%s, %s) = %s, want %s", c.start, c.end, got, c.want)
		}
	}
}

func TestIntervalOverlap(t *testing.T) {
	cases := []struct {
		name         string
		aStart, aEnd string
		bStart, bEnd string
		want         string
	}{
		{"inside", "07:30", "16:30", "12:00", "12:30", "0.5"},
		{"disjoint", "07:00", "15:00", "15:00", "23:00", "0"},
		{"partial", "07:00", "15:00", "14:00", "16:00", "1"},
		{"night shift early break", "22:00", "06:00", "02:00", "02:30", "0.5"},
		{"break across midnight", "22:00", "06:00", "23:30", "00:30", "1"},
	}
	for _, c := range cases {
		got := IntervalOverlap(mustTOD(t, c.aStart), mustTOD(t, c.aEnd), mustTOD(t, c.bStart), mustTOD(t, c.bEnd))
		if !got.Equal(hours(c.want)) {
			t.Fatalf("%s: overlap = %s, want %s", c.name, got, c.want)
		}
	}
}

//
// Множества дней недели
//

func TestWeekdaySet(t *testing.T) {
	s, err := ParseWeekdaySet("5, 1,3,3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.String() != "1,3,5" {
		t.Fatalf("canonical form = %q, want 1,3,5", s.String())
	}
	if !s.Contains(3) || s.Contains(2) || s.Contains(0) || s.Contains(8) {
		t.Fatalf("unexpected membership for %s", s)
	}
	if s.Len() != 3 {
		t.Fatalf("len = %d, want 3", s.Len())
	}
	if Weekdays.String() != "1,2,3,4,5" {
		t.Fatalf("Weekdays = %s", Weekdays)
	}

	if _, err := ParseWeekdaySet("1,8"); !errors.Is(err, ErrInvalidWeekday) {
		t.Fatalf("expected ErrInvalidWeekday, got %v", err)
	}
	empty, err := ParseWeekdaySet("")
	if err != nil || !empty.IsEmpty() {
		t.Fatalf("expected empty set, got %v %v", empty, err)
	}
}

//
// Интервалы
//

func TestHasOverlap_HalfOpen(t *testing.T) {
	day := mustDate(t, "2024-01-01")
	lunch := DayRange(day, mustTOD(t, "12:00"), mustTOD(t, "12:30"))
	existing := []TimeRange{DayRange(day, mustTOD(t, "12:30"), mustTOD(t, "12:45"))}

	if has, conflicts := HasOverlap(lunch, existing, false); has {
		t.Fatalf("expected no overlap, got conflicts: %+v", conflicts)
	}
	if has, _ := HasOverlap(lunch, existing, true); !has {
		t.Fatalf("expected overlap in inclusive mode")
	}
}

func TestPlaceWithin_NightShift(t *testing.T) {
	day := mustDate(t, "2024-01-01")
	shift := DayRange(day, mustTOD(t, "22:00"), mustTOD(t, "06:00"))
	if shift.Duration() != 8*time.Hour {
		t.Fatalf("night shift duration = %v", shift.Duration())
	}

	br := PlaceWithin(shift, day, mustTOD(t, "02:00"), mustTOD(t, "02:30"))
	if !shift.Contains(br) {
		t.Fatalf("expected break %v inside shift %v", br, shift)
	}

	outside := PlaceWithin(shift, day, mustTOD(t, "06:00"), mustTOD(t, "06:30"))
	if shift.Contains(outside) {
		t.Fatalf("expected break %v outside shift %v", outside, shift)
	}
}

//
// Пагинация
//

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	p := Paginate(items, 2, 2)
	if len(p.Items) != 2 || p.Items[0] != 3 || !p.HasNext || !p.HasPrev || p.LastPage != 3 {
		t.Fatalf("unexpected page: %+v", p)
	}

	p = Paginate(items, 9, 2)
	if len(p.Items) != 0 || p.HasNext {
		t.Fatalf("expected empty trailing page, got %+v", p)
	}

	p = Paginate([]int{}, 0, 0)
	if p.Page != 1 || p.PerPage != DefaultPerPage || p.LastPage != 1 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

//
// Проверка линии
//

type stubLines map[uuid.UUID]*Line

func (s stubLines) FindLine(_ context.Context, id uuid.UUID) (*Line, error) {
	return s[id], nil
}

func TestValidateLine(t *testing.T) {
	active := &Line{ID: uuid.New(), Name: "1-EURO 264", Active: true}
	retired := &Line{ID: uuid.New(), Name: "MCI", Active: false}
	store := stubLines{active.ID: active, retired.ID: retired}
	ctx := context.Background()

	if _, err := ValidateLine(ctx, store, uuid.Nil, false); !errors.Is(err, ErrInvalidLineID) {
		t.Fatalf("expected ErrInvalidLineID, got %v", err)
	}
	if _, err := ValidateLine(ctx, store, uuid.New(), false); !errors.Is(err, ErrLineNotFound) {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}
	if _, err := ValidateLine(ctx, store, retired.ID, true); !errors.Is(err, ErrLineInactive) {
		t.Fatalf("expected ErrLineInactive, got %v", err)
	}
	if l, err := ValidateLine(ctx, store, retired.ID, false); err != nil || l.Name != "MCI" {
		t.Fatalf("expected inactive line without requireActive, got %v %v", l, err)
	}
}
