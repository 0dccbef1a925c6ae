package capacity

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/config"
	"github.com/Leganyst/production-scheduler/internal/repository"
)

// Общий расчёт не зависит от отмены ни одного из ждущих вызывающих, но ограничен по времени.
const flightTimeout = 30 * time.Second

type resolveOptions struct {
	clampNegative bool
	debugInactive bool
}

// Resolver считает эффективные часы линии по шаблонам смен и переопределениям.
// Состояния не хранит, кроме мемоизации по версиям хранилищ. Часы процесса не читает.
type Resolver struct {
	db      *gorm.DB
	cfg     config.EngineConfig
	memo    *memo
	flights singleflight.Group
	log     *log.Logger

	// вызывается между чтением данных и повторным чтением версий
	afterSnapshotRead func()
}

type snapshot struct {
	versions  repository.Versions
	shifts    []Shift
	overrides []Override
}

// Calendar возвращает n подряд идущих дней начиная со start.
// n == 0 — календарь по умолчанию (calendar_default_weeks × 7).
func (r *Resolver) Calendar(ctx context.Context, lineID uuid.UUID, start calendar.Date, n int) ([]EffectiveDay, error) {
	if start.IsZero() {
		return nil, invalidf("start_date is required")
	}
	if n < 0 {
		return nil, invalidf("n_days must be non-negative, got %d", n)
	}
	if n == 0 {
		n = r.cfg.DefaultDays()
	}
	if n > r.cfg.MaxCalendarDays {
		return nil, invalidf("n_days must be at most %d, got %d", r.cfg.MaxCalendarDays, n)
	}
	if _, err := requireLine(ctx, r.db, lineID); err != nil {
		return nil, err
	}

	versions, err := repository.NewGormVersionRepository(r.db).Get(ctx)
	if err != nil {
		return nil, err
	}
	if days, ok := r.memo.get(memoKey{line: lineID, start: start, n: n, versions: versions}); ok {
		return days, nil
	}

	// Ключ полёта включает версии, увиденные вызывающим: он не получит снимок старше своей записи.
	flight := fmt.Sprintf("%s|%s|%d|%d|%d", lineID, start, n, versions.Shifts, versions.Overrides)
	ch := r.flights.DoChan(flight, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
		defer cancel()

		snap, err := r.snapshot(fctx, lineID, start, start.AddDays(n-1))
		if err != nil {
			return nil, err
		}
		days := r.build(lineID, start, n, snap)
		r.memo.put(memoKey{line: lineID, start: start, n: n, versions: snap.versions}, days)
		return days, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneDays(res.Val.([]EffectiveDay)), nil
	}
}

// EffectiveDay — точечный запрос; тот же расчёт, что и для диапазона.
func (r *Resolver) EffectiveDay(ctx context.Context, lineID uuid.UUID, date calendar.Date) (EffectiveDay, error) {
	days, err := r.Calendar(ctx, lineID, date, 1)
	if err != nil {
		return EffectiveDay{}, err
	}
	return days[0], nil
}

// snapshot читает версии, смены, переопределения и снова версии.
// Несовпадение версий значит, что между чтениями прошла запись: читаем заново.
func (r *Resolver) snapshot(ctx context.Context, lineID uuid.UUID, from, to calendar.Date) (snapshot, error) {
	versions := repository.NewGormVersionRepository(r.db)

	for attempt := 1; attempt <= r.cfg.SnapshotRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return snapshot{}, err
		}

		before, err := versions.Get(ctx)
		if err != nil {
			return snapshot{}, err
		}
		shifts, err := listShifts(ctx, r.db, lineID)
		if err != nil {
			return snapshot{}, err
		}
		overrides, err := listOverrides(ctx, r.db, lineID, from, to)
		if err != nil {
			return snapshot{}, err
		}

		if r.afterSnapshotRead != nil {
			r.afterSnapshotRead()
		}

		after, err := versions.Get(ctx)
		if err != nil {
			return snapshot{}, err
		}
		if before == after {
			if err := ctx.Err(); err != nil {
				return snapshot{}, err
			}
			return snapshot{versions: before, shifts: shifts, overrides: overrides}, nil
		}
		r.log.Printf("capacity: snapshot moved for line %s (%+v -> %+v), attempt %d", lineID, before, after, attempt)
	}
	return snapshot{}, fmt.Errorf("%w: line %s after %d attempts", ErrConflictingSnapshot, lineID, r.cfg.SnapshotRetries)
}

func (r *Resolver) build(lineID uuid.UUID, start calendar.Date, n int, snap snapshot) []EffectiveDay {
	opts := resolveOptions{
		clampNegative: r.cfg.ClampNegativeShiftHours,
		debugInactive: r.cfg.DebugInactiveShifts,
	}
	days := make([]EffectiveDay, n)
	for i := range days {
		days[i] = resolveDay(start.AddDays(i), snap.shifts, snap.overrides, opts)
		for _, w := range days[i].Warnings {
			r.log.Printf("capacity: line %s %s: %s", lineID, days[i].Date, w.Message)
		}
	}
	return days
}

// resolveDay — расчёт одного дня:
//  1. если дату покрывает переопределение, побеждает самое узкое, затем самое новое, затем больший id;
//  2. иначе сумма чистых часов активных смен, у которых этот день недели в active_days;
//  3. итог не бывает меньше нуля.
func resolveDay(date calendar.Date, shifts []Shift, overrides []Override, opts resolveOptions) EffectiveDay {
	if o := pickOverride(date, overrides); o != nil {
		id := o.ID
		return EffectiveDay{
			Date:       date,
			Hours:      o.TotalHours,
			Source:     SourceOverride,
			OverrideID: &id,
			Reason:     o.Reason,
			Shifts:     []ShiftContribution{},
		}
	}

	day := EffectiveDay{
		Date:   date,
		Source: SourceDefault,
		Shifts: []ShiftContribution{},
	}
	weekday := date.ISOWeekday()
	total := 0

	for _, s := range shifts {
		if !s.ActiveDays.Contains(weekday) {
			continue
		}
		c := ShiftContribution{
			ID:          s.ID,
			Name:        s.Name,
			ShiftNumber: s.ShiftNumber,
			Start:       s.Start,
			End:         s.End,
			NetHours:    decimal.Zero,
			Active:      s.Active,
		}
		if !s.Active {
			if opts.debugInactive {
				day.Shifts = append(day.Shifts, c)
			}
			continue
		}

		net := s.NetSeconds()
		if net < 0 && opts.clampNegative {
			day.Warnings = append(day.Warnings, Warning{
				Kind:    WarningShiftHoursClamped,
				ShiftID: s.ID,
				Message: fmt.Sprintf("shift %q: unpaid breaks exceed shift length by %s h, counted as 0",
					s.Name, calendar.HoursFromSeconds(-net)),
			})
			net = 0
		}
		c.NetHours = calendar.HoursFromSeconds(net)
		total += net
		day.Shifts = append(day.Shifts, c)
	}

	if total < 0 {
		total = 0
	}
	day.Hours = calendar.HoursFromSeconds(total)
	return day
}

func pickOverride(date calendar.Date, overrides []Override) *Override {
	var best *Override
	for i := range overrides {
		o := &overrides[i]
		if !o.Covers(date) {
			continue
		}
		if best == nil || beats(o, best) {
			best = o
		}
	}
	return best
}

// beats: a авторитетнее b?
func beats(a, b *Override) bool {
	if as, bs := a.Span(), b.Span(); as != bs {
		return as < bs
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) > 0
}
