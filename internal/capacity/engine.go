package capacity

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/config"
)

// Engine — единая точка доступа к мощностям линий:
// хранилища смен и переопределений плюс резолвер поверх них.
type Engine struct {
	Lines     *LineStore
	Shifts    *ShiftStore
	Overrides *OverrideStore

	resolver *Resolver
	cfg      config.EngineConfig
}

type Option func(*options)

type options struct {
	now func() time.Time
	log *log.Logger
}

// WithClock подменяет часы, которыми сторы проставляют created_at.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.log = l }
}

func NewEngine(db *gorm.DB, cfg config.EngineConfig, opts ...Option) *Engine {
	o := options{now: time.Now, log: log.Default()}
	for _, fn := range opts {
		fn(&o)
	}
	if o.log == nil {
		o.log = log.Default()
	}
	if cfg.SnapshotRetries < 1 {
		cfg.SnapshotRetries = 1
	}

	b := base{db: db, locks: newLineLocks(), now: o.now, log: o.log}
	return &Engine{
		Lines:     &LineStore{base: b, defaultTZ: cfg.LineDefaultTimeZone},
		Shifts:    &ShiftStore{base: b},
		Overrides: &OverrideStore{base: b},
		resolver: &Resolver{
			db:   db,
			cfg:  cfg,
			memo: newMemo(cfg.MemoSize),
			log:  o.log,
		},
		cfg: cfg,
	}
}

func (e *Engine) Config() config.EngineConfig { return e.cfg }

//
// Запросы мощности
//

func (e *Engine) GetCalendar(ctx context.Context, lineID uuid.UUID, start calendar.Date, nDays int) ([]EffectiveDay, error) {
	return e.resolver.Calendar(ctx, lineID, start, nDays)
}

// DefaultCalendar — календарь по умолчанию от начала недели, содержащей reference.
func (e *Engine) DefaultCalendar(ctx context.Context, lineID uuid.UUID, reference calendar.Date) ([]EffectiveDay, error) {
	if reference.IsZero() {
		return nil, invalidf("reference date is required")
	}
	return e.resolver.Calendar(ctx, lineID, calendar.WeekStartOf(reference, e.cfg.WeekStart), 0)
}

func (e *Engine) EffectiveDay(ctx context.Context, lineID uuid.UUID, date calendar.Date) (EffectiveDay, error) {
	return e.resolver.EffectiveDay(ctx, lineID, date)
}

//
// Смены
//

func (e *Engine) CreateShift(ctx context.Context, lineID uuid.UUID, spec ShiftSpec) (uuid.UUID, error) {
	return e.Shifts.Create(ctx, lineID, spec)
}

func (e *Engine) UpdateShift(ctx context.Context, id uuid.UUID, patch ShiftPatch) error {
	return e.Shifts.Update(ctx, id, patch)
}

func (e *Engine) DeleteShift(ctx context.Context, id uuid.UUID) error {
	return e.Shifts.Delete(ctx, id)
}

func (e *Engine) GetShift(ctx context.Context, id uuid.UUID) (*Shift, error) {
	return e.Shifts.Get(ctx, id)
}

func (e *Engine) ListShifts(ctx context.Context, lineID uuid.UUID) ([]Shift, error) {
	return e.Shifts.List(ctx, lineID)
}

func (e *Engine) AddBreak(ctx context.Context, shiftID uuid.UUID, spec BreakSpec) (uuid.UUID, error) {
	return e.Shifts.AddBreak(ctx, shiftID, spec)
}

func (e *Engine) RemoveBreak(ctx context.Context, breakID uuid.UUID) error {
	return e.Shifts.RemoveBreak(ctx, breakID)
}

//
// Переопределения
//

func (e *Engine) CreateOverride(ctx context.Context, lineID uuid.UUID, spec OverrideSpec) (uuid.UUID, error) {
	return e.Overrides.Create(ctx, lineID, spec)
}

func (e *Engine) UpdateOverride(ctx context.Context, id uuid.UUID, patch OverridePatch) error {
	return e.Overrides.Update(ctx, id, patch)
}

func (e *Engine) DeleteOverride(ctx context.Context, id uuid.UUID) error {
	return e.Overrides.Delete(ctx, id)
}

func (e *Engine) GetOverride(ctx context.Context, id uuid.UUID) (*Override, error) {
	return e.Overrides.Get(ctx, id)
}

func (e *Engine) ListOverrides(ctx context.Context, lineID uuid.UUID, from, to calendar.Date) ([]Override, error) {
	return e.Overrides.ListInRange(ctx, lineID, from, to)
}

// AddOvertime создаёт однодневное переопределение: текущие часы дня плюс extra.
// Чтение дня и запись идут под замком линии.
func (e *Engine) AddOvertime(
	ctx context.Context,
	lineID uuid.UUID,
	date calendar.Date,
	extra decimal.Decimal,
	reason string,
) (uuid.UUID, error) {
	if !extra.IsPositive() {
		return uuid.Nil, invalidf("extra_hours must be positive, got %s", extra)
	}
	if date.IsZero() {
		return uuid.Nil, invalidf("date is required")
	}

	unlock := e.Overrides.locks.lock(lineID)
	defer unlock()

	day, err := e.resolver.EffectiveDay(ctx, lineID, date)
	if err != nil {
		return uuid.Nil, err
	}
	if reason == "" {
		reason = "Overtime +" + extra.String() + "h"
	}
	spec := OverrideSpec{
		StartDate:  date,
		EndDate:    date,
		TotalHours: day.Hours.Add(extra),
		Reason:     reason,
	}
	if err := validateOverride(&spec); err != nil {
		return uuid.Nil, err
	}
	return e.Overrides.createLocked(ctx, lineID, spec)
}

//
// Линии
//

func (e *Engine) CreateLine(ctx context.Context, spec LineSpec) (*Line, error) {
	return e.Lines.Create(ctx, spec)
}

func (e *Engine) UpdateLine(ctx context.Context, id uuid.UUID, patch LinePatch) (*Line, error) {
	return e.Lines.Update(ctx, id, patch)
}

func (e *Engine) DeactivateLine(ctx context.Context, id uuid.UUID) error {
	return e.Lines.Deactivate(ctx, id)
}

func (e *Engine) GetLine(ctx context.Context, id uuid.UUID) (*Line, error) {
	return e.Lines.Get(ctx, id)
}

func (e *Engine) ListLines(ctx context.Context, activeOnly bool) ([]Line, error) {
	return e.Lines.List(ctx, activeOnly)
}

// Today — текущая дата в часовом поясе линии. Нужна транспорту,
// чтобы подставить "сегодня" по умолчанию; резолвер часов не читает.
func (e *Engine) Today(ctx context.Context, lineID uuid.UUID) (calendar.Date, error) {
	l, err := e.Lines.Get(ctx, lineID)
	if err != nil {
		return calendar.Date{}, err
	}
	loc, err := time.LoadLocation(l.TimeZone)
	if err != nil {
		loc = time.UTC
	}
	return calendar.DateOf(e.Lines.now().In(loc)), nil
}
