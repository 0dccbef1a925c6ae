package placement

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/capacity"
)

// weekSource: пн–пт по hours часов, выходные закрыты.
type weekSource struct {
	hours decimal.Decimal
	calls int
}

func (w *weekSource) GetCalendar(_ context.Context, _ uuid.UUID, start calendar.Date, n int) ([]capacity.EffectiveDay, error) {
	w.calls++
	out := make([]capacity.EffectiveDay, n)
	for i := range out {
		d := start.AddDays(i)
		h := decimal.Zero
		if d.ISOWeekday() <= 5 {
			h = w.hours
		}
		out[i] = capacity.EffectiveDay{Date: d, Hours: h, Source: capacity.SourceDefault}
	}
	return out, nil
}

func mustDate(t *testing.T, s string) calendar.Date {
	t.Helper()
	d, err := calendar.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return d
}

func h(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPlace_SharesDaysAndSkipsWeekend(t *testing.T) {
	src := &weekSource{hours: h("8")}
	p := NewPlacer(src, 60)

	jobs := []Job{
		{WONumber: "WO-1", Hours: h("20")},
		{WONumber: "WO-2", Hours: h("6")},
		{WONumber: "WO-3", Hours: h("14")},
	}
	// четверг 2024-01-04
	got, err := p.Place(context.Background(), uuid.New(), mustDate(t, "2024-01-04"), jobs)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("calendar must be read once, got %d calls", src.calls)
	}

	// WO-1: чт 8, пт 8, пн 4
	first := got[0]
	if first.Start.String() != "2024-01-04" || first.End.String() != "2024-01-08" || len(first.Slots) != 3 {
		t.Fatalf("WO-1: unexpected assignment %+v", first)
	}
	if !first.Slots[2].Hours.Equal(h("4")) {
		t.Fatalf("WO-1: last slot = %s, want 4", first.Slots[2].Hours)
	}

	// WO-2 делит понедельник: 4, затем вторник 2
	second := got[1]
	if second.Start.String() != "2024-01-08" || second.End.String() != "2024-01-09" {
		t.Fatalf("WO-2: unexpected span %s..%s", second.Start, second.End)
	}
	if !second.Slots[0].Hours.Equal(h("4")) || !second.Slots[1].Hours.Equal(h("2")) {
		t.Fatalf("WO-2: unexpected slots %+v", second.Slots)
	}

	// WO-3: вт 6, ср 8
	third := got[2]
	if third.Start.String() != "2024-01-09" || third.End.String() != "2024-01-10" {
		t.Fatalf("WO-3: unexpected span %s..%s", third.Start, third.End)
	}

	for _, a := range got {
		total := decimal.Zero
		for _, s := range a.Slots {
			if s.Date.ISOWeekday() > 5 {
				t.Fatalf("%s placed on weekend %s", a.WONumber, s.Date)
			}
			total = total.Add(s.Hours)
		}
		if !total.Equal(a.Hours) {
			t.Fatalf("%s: placed %s of %s hours", a.WONumber, total, a.Hours)
		}
	}
}

func TestPlace_Deterministic(t *testing.T) {
	p := NewPlacer(&weekSource{hours: h("7.5")}, 60)
	jobs := []Job{{WONumber: "A", Hours: h("11")}, {WONumber: "B", Hours: h("3.25")}}
	anchor := mustDate(t, "2024-01-01")

	a, err := p.Place(context.Background(), uuid.Nil, anchor, jobs)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	b, err := p.Place(context.Background(), uuid.Nil, anchor, jobs)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	for i := range a {
		if len(a[i].Slots) != len(b[i].Slots) {
			t.Fatalf("runs differ for %s", a[i].WONumber)
		}
		for j := range a[i].Slots {
			if !a[i].Slots[j].Date.Equal(b[i].Slots[j].Date) || !a[i].Slots[j].Hours.Equal(b[i].Slots[j].Hours) {
				t.Fatalf("runs differ for %s slot %d", a[i].WONumber, j)
			}
		}
	}
}

func TestPlace_HorizonExhausted(t *testing.T) {
	p := NewPlacer(&weekSource{hours: h("8")}, 7)
	_, err := p.Place(context.Background(), uuid.New(), mustDate(t, "2024-01-01"), []Job{{WONumber: "BIG", Hours: h("100")}})
	if !errors.Is(err, capacity.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}

	closed := NewPlacer(&weekSource{hours: h("0")}, 30)
	_, err = closed.Place(context.Background(), uuid.New(), mustDate(t, "2024-01-01"), []Job{{WONumber: "X", Hours: h("1")}})
	if !errors.Is(err, capacity.ErrInvalid) {
		t.Fatalf("expected ErrInvalid on a closed line, got %v", err)
	}
}

func TestPlace_ZeroDurationJob(t *testing.T) {
	p := NewPlacer(&weekSource{hours: h("8")}, 30)
	got, err := p.Place(context.Background(), uuid.New(), mustDate(t, "2024-01-01"), []Job{{WONumber: "EMPTY", Hours: decimal.Zero}})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if len(got[0].Slots) != 0 || got[0].Start.String() != "2024-01-01" {
		t.Fatalf("unexpected zero-length assignment: %+v", got[0])
	}
}

func TestLatestStart(t *testing.T) {
	p := NewPlacer(&weekSource{hours: h("8")}, 60)
	ctx := context.Background()
	// срок — понедельник 2024-01-15; до него пт 12, чт 11, ср 10
	due := mustDate(t, "2024-01-15")

	got, err := p.LatestStart(ctx, uuid.New(), due, h("20"))
	if err != nil {
		t.Fatalf("latest start: %v", err)
	}
	if got.String() != "2024-01-10" {
		t.Fatalf("expected 2024-01-10, got %s", got)
	}

	got, err = p.LatestStart(ctx, uuid.New(), due, h("8"))
	if err != nil || got.String() != "2024-01-12" {
		t.Fatalf("expected 2024-01-12, got %s %v", got, err)
	}

	got, err = p.LatestStart(ctx, uuid.New(), due, decimal.Zero)
	if err != nil || !got.Equal(due) {
		t.Fatalf("zero hours should start on the due date, got %s %v", got, err)
	}

	if _, err := p.LatestStart(ctx, uuid.New(), due, h("10000")); !errors.Is(err, capacity.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}
