package capacity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/model"
	"github.com/Leganyst/production-scheduler/internal/repository"
)

// ShiftStore — недельные шаблоны смен и их перерывы.
// Любая мутация увеличивает версию shift_templates в той же транзакции.
type ShiftStore struct {
	base
}

func (s *ShiftStore) Create(ctx context.Context, lineID uuid.UUID, spec ShiftSpec) (uuid.UUID, error) {
	shift := Shift{
		LineID:      lineID,
		Name:        strings.TrimSpace(spec.Name),
		ShiftNumber: spec.ShiftNumber,
		Start:       spec.Start,
		End:         spec.End,
		ActiveDays:  spec.ActiveDays,
		Active:      spec.Active,
	}
	for _, b := range spec.Breaks {
		shift.Breaks = append(shift.Breaks, breakFromSpec(b))
	}
	if err := validateShift(shift); err != nil {
		return uuid.Nil, err
	}

	unlock := s.locks.lock(lineID)
	defer unlock()

	m := shiftToModel(shift)
	now := s.now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	for i := range m.Breaks {
		m.Breaks[i].CreatedAt = now
	}

	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if _, err := requireLine(ctx, tx, lineID); err != nil {
			return err
		}
		repo := repository.NewGormShiftRepository(tx)
		if err := checkDuplicate(ctx, repo, shift); err != nil {
			return err
		}
		if err := repo.Create(ctx, m); err != nil {
			return err
		}
		return s.bump(ctx, tx, model.VersionShiftTemplates)
	})
	if err != nil {
		return uuid.Nil, mapStoreError(err)
	}
	return m.ID, nil
}

func (s *ShiftStore) Get(ctx context.Context, id uuid.UUID) (*Shift, error) {
	m, err := repository.NewGormShiftRepository(s.db).GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFoundf("shift %s", id)
		}
		return nil, err
	}
	shift, err := shiftFromModel(m)
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

// Update применяет частичный патч. Перерывы должны остаться внутри смены.
func (s *ShiftStore) Update(ctx context.Context, id uuid.UUID, patch ShiftPatch) error {
	lineID, err := s.lineOfShift(ctx, id)
	if err != nil {
		return err
	}

	unlock := s.locks.lock(lineID)
	defer unlock()

	err = s.inTx(ctx, func(tx *gorm.DB) error {
		repo := repository.NewGormShiftRepository(tx)
		m, err := repo.GetByID(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return notFoundf("shift %s", id)
			}
			return err
		}
		shift, err := shiftFromModel(m)
		if err != nil {
			return err
		}

		applyShiftPatch(&shift, patch)
		if err := validateShift(shift); err != nil {
			return err
		}
		if err := checkDuplicate(ctx, repo, shift); err != nil {
			return err
		}

		upd := shiftToModel(shift)
		upd.Breaks = nil
		upd.UpdatedAt = s.now().UTC()
		if err := repo.Update(ctx, upd); err != nil {
			return err
		}
		return s.bump(ctx, tx, model.VersionShiftTemplates)
	})
	return mapStoreError(err)
}

// Delete удаляет смену вместе с перерывами. Повторный вызов — NotFound.
func (s *ShiftStore) Delete(ctx context.Context, id uuid.UUID) error {
	lineID, err := s.lineOfShift(ctx, id)
	if err != nil {
		return err
	}

	unlock := s.locks.lock(lineID)
	defer unlock()

	err = s.inTx(ctx, func(tx *gorm.DB) error {
		n, err := repository.NewGormShiftRepository(tx).Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return notFoundf("shift %s", id)
		}
		return s.bump(ctx, tx, model.VersionShiftTemplates)
	})
	return mapStoreError(err)
}

// List возвращает все смены линии (включая неактивные) с перерывами.
func (s *ShiftStore) List(ctx context.Context, lineID uuid.UUID) ([]Shift, error) {
	if _, err := requireLine(ctx, s.db, lineID); err != nil {
		return nil, err
	}
	return listShifts(ctx, s.db, lineID)
}

func listShifts(ctx context.Context, db *gorm.DB, lineID uuid.UUID) ([]Shift, error) {
	ms, err := repository.NewGormShiftRepository(db).ListByLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	return shiftsFromModel(ms)
}

func (s *ShiftStore) AddBreak(ctx context.Context, shiftID uuid.UUID, spec BreakSpec) (uuid.UUID, error) {
	lineID, err := s.lineOfShift(ctx, shiftID)
	if err != nil {
		return uuid.Nil, err
	}

	unlock := s.locks.lock(lineID)
	defer unlock()

	var id uuid.UUID
	err = s.inTx(ctx, func(tx *gorm.DB) error {
		repo := repository.NewGormShiftRepository(tx)
		m, err := repo.GetByID(ctx, shiftID)
		if err != nil {
			if repository.IsNotFound(err) {
				return notFoundf("shift %s", shiftID)
			}
			return err
		}
		shift, err := shiftFromModel(m)
		if err != nil {
			return err
		}

		br := breakFromSpec(spec)
		br.ShiftID = shiftID
		shift.Breaks = append(shift.Breaks, br)
		if err := validateShift(shift); err != nil {
			return err
		}

		bm := breakToModel(br)
		bm.CreatedAt = s.now().UTC()
		if err := repo.CreateBreak(ctx, bm); err != nil {
			return err
		}
		id = bm.ID
		return s.bump(ctx, tx, model.VersionShiftTemplates)
	})
	if err != nil {
		return uuid.Nil, mapStoreError(err)
	}
	return id, nil
}

func (s *ShiftStore) RemoveBreak(ctx context.Context, breakID uuid.UUID) error {
	br, err := repository.NewGormShiftRepository(s.db).GetBreak(ctx, breakID)
	if err != nil {
		if repository.IsNotFound(err) {
			return notFoundf("break %s", breakID)
		}
		return err
	}
	lineID, err := s.lineOfShift(ctx, br.ShiftID)
	if err != nil {
		return err
	}

	unlock := s.locks.lock(lineID)
	defer unlock()

	err = s.inTx(ctx, func(tx *gorm.DB) error {
		n, err := repository.NewGormShiftRepository(tx).DeleteBreak(ctx, breakID)
		if err != nil {
			return err
		}
		if n == 0 {
			return notFoundf("break %s", breakID)
		}
		return s.bump(ctx, tx, model.VersionShiftTemplates)
	})
	return mapStoreError(err)
}

func (s *ShiftStore) lineOfShift(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	if id == uuid.Nil {
		return uuid.Nil, invalidf("shift id is required")
	}
	m, err := repository.NewGormShiftRepository(s.db).GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return uuid.Nil, notFoundf("shift %s", id)
		}
		return uuid.Nil, err
	}
	return m.LineID, nil
}

//
// Валидация
//

// Опорная дата для проверки вложенности перерывов: подойдёт любая.
var referenceDay = calendar.NewDate(2024, 1, 1)

func validTOD(t calendar.TimeOfDay) bool {
	return t >= 0 && int(t) < calendar.SecondsPerDay
}

func validateShift(s Shift) error {
	if s.Name == "" {
		return invalidf("shift name is required")
	}
	if !validTOD(s.Start) || !validTOD(s.End) {
		return invalidf("shift times must be within a day")
	}
	if s.Start == s.End {
		return invalidf("shift start and end must differ")
	}
	if s.Active && s.ActiveDays.IsEmpty() {
		return invalidf("active shift needs at least one active day")
	}

	span := calendar.DayRange(referenceDay, s.Start, s.End)
	placed := make([]calendar.TimeRange, 0, len(s.Breaks))
	for _, b := range s.Breaks {
		if b.Name == "" {
			return invalidf("break name is required")
		}
		if !validTOD(b.Start) || !validTOD(b.End) {
			return invalidf("break times must be within a day")
		}
		if b.Start == b.End {
			return invalidf("break %q: start and end must differ", b.Name)
		}
		r := calendar.PlaceWithin(span, referenceDay, b.Start, b.End)
		if !span.Contains(r) {
			return invalidf("break %q %s-%s is outside shift %s-%s", b.Name, b.Start, b.End, s.Start, s.End)
		}
		if has, _ := calendar.HasOverlap(r, placed, false); has {
			return invalidf("break %q overlaps another break", b.Name)
		}
		placed = append(placed, r)
	}
	return nil
}

// checkDuplicate: две активные смены линии не могут иметь одинаковые (start, end, active_days).
func checkDuplicate(ctx context.Context, repo repository.ShiftRepository, s Shift) error {
	if !s.Active {
		return nil
	}
	existing, err := repo.ListByLine(ctx, s.LineID)
	if err != nil {
		return err
	}
	days := s.ActiveDays.String()
	for i := range existing {
		e := &existing[i]
		if e.ID == s.ID || !e.Active {
			continue
		}
		if model.TimeOfDay(e.StartTime) == s.Start &&
			model.TimeOfDay(e.EndTime) == s.End &&
			e.ActiveDays == days {
			return invalidf("active shift %s-%s on days %s already exists", s.Start, s.End, days)
		}
	}
	return nil
}

func applyShiftPatch(s *Shift, p ShiftPatch) {
	if p.Name != nil {
		s.Name = strings.TrimSpace(*p.Name)
	}
	if p.ShiftNumber != nil {
		s.ShiftNumber = *p.ShiftNumber
	}
	if p.Start != nil {
		s.Start = *p.Start
	}
	if p.End != nil {
		s.End = *p.End
	}
	if p.ActiveDays != nil {
		s.ActiveDays = *p.ActiveDays
	}
	if p.Active != nil {
		s.Active = *p.Active
	}
}

func breakFromSpec(b BreakSpec) Break {
	return Break{
		Name:   strings.TrimSpace(b.Name),
		Start:  b.Start,
		End:    b.End,
		IsPaid: b.IsPaid,
	}
}

func breakToModel(b Break) *model.ShiftBreak {
	return &model.ShiftBreak{
		ID:        b.ID,
		ShiftID:   b.ShiftID,
		Name:      b.Name,
		StartTime: model.TimeOf(b.Start),
		EndTime:   model.TimeOf(b.End),
		IsPaid:    b.IsPaid,
	}
}

func shiftToModel(s Shift) *model.ShiftTemplate {
	m := &model.ShiftTemplate{
		ID:          s.ID,
		LineID:      s.LineID,
		Name:        s.Name,
		ShiftNumber: s.ShiftNumber,
		StartTime:   model.TimeOf(s.Start),
		EndTime:     model.TimeOf(s.End),
		ActiveDays:  s.ActiveDays.String(),
		Active:      s.Active,
	}
	for _, b := range s.Breaks {
		m.Breaks = append(m.Breaks, *breakToModel(b))
	}
	return m
}
