package capacity

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/model"
	"github.com/Leganyst/production-scheduler/internal/repository"
)

// OverrideStore — переопределения мощности по диапазонам дат.
// Любая мутация увеличивает версию capacity_overrides в той же транзакции.
type OverrideStore struct {
	base
}

func (s *OverrideStore) Create(ctx context.Context, lineID uuid.UUID, spec OverrideSpec) (uuid.UUID, error) {
	if err := validateOverride(&spec); err != nil {
		return uuid.Nil, err
	}

	unlock := s.locks.lock(lineID)
	defer unlock()

	return s.createLocked(ctx, lineID, spec)
}

// createLocked ожидает, что замок линии уже взят, а spec проверен.
func (s *OverrideStore) createLocked(ctx context.Context, lineID uuid.UUID, spec OverrideSpec) (uuid.UUID, error) {
	now := s.now().UTC()
	m := &model.CapacityOverride{
		LineID:      lineID,
		StartDate:   model.DateOf(spec.StartDate),
		EndDate:     model.DateOf(spec.EndDate),
		TotalHours:  spec.TotalHours,
		Reason:      spec.Reason,
		ShiftConfig: jsonColumn(spec.ShiftConfig),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if _, err := requireLine(ctx, tx, lineID); err != nil {
			return err
		}
		if err := repository.NewGormOverrideRepository(tx).Create(ctx, m); err != nil {
			return err
		}
		return s.bump(ctx, tx, model.VersionCapacityOverrides)
	})
	if err != nil {
		return uuid.Nil, mapStoreError(err)
	}
	return m.ID, nil
}

func (s *OverrideStore) Get(ctx context.Context, id uuid.UUID) (*Override, error) {
	m, err := repository.NewGormOverrideRepository(s.db).GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFoundf("override %s", id)
		}
		return nil, err
	}
	o := overrideFromModel(m)
	return &o, nil
}

func (s *OverrideStore) Update(ctx context.Context, id uuid.UUID, patch OverridePatch) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	unlock := s.locks.lock(current.LineID)
	defer unlock()

	err = s.inTx(ctx, func(tx *gorm.DB) error {
		repo := repository.NewGormOverrideRepository(tx)
		m, err := repo.GetByID(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return notFoundf("override %s", id)
			}
			return err
		}

		spec := OverrideSpec{
			StartDate:   model.CalendarDate(m.StartDate),
			EndDate:     model.CalendarDate(m.EndDate),
			TotalHours:  m.TotalHours,
			Reason:      m.Reason,
			ShiftConfig: json.RawMessage(m.ShiftConfig),
		}
		applyOverridePatch(&spec, patch)
		if err := validateOverride(&spec); err != nil {
			return err
		}

		m.StartDate = model.DateOf(spec.StartDate)
		m.EndDate = model.DateOf(spec.EndDate)
		m.TotalHours = spec.TotalHours
		m.Reason = spec.Reason
		m.ShiftConfig = jsonColumn(spec.ShiftConfig)
		m.UpdatedAt = s.now().UTC()
		if err := repo.Update(ctx, m); err != nil {
			return err
		}
		return s.bump(ctx, tx, model.VersionCapacityOverrides)
	})
	return mapStoreError(err)
}

func (s *OverrideStore) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	unlock := s.locks.lock(current.LineID)
	defer unlock()

	err = s.inTx(ctx, func(tx *gorm.DB) error {
		n, err := repository.NewGormOverrideRepository(tx).Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return notFoundf("override %s", id)
		}
		return s.bump(ctx, tx, model.VersionCapacityOverrides)
	})
	return mapStoreError(err)
}

// ListInRange — переопределения линии, пересекающие [from, to].
func (s *OverrideStore) ListInRange(ctx context.Context, lineID uuid.UUID, from, to calendar.Date) ([]Override, error) {
	if _, err := calendar.NewDateRange(from, to); err != nil {
		return nil, invalidf("%v", err)
	}
	if _, err := requireLine(ctx, s.db, lineID); err != nil {
		return nil, err
	}
	return listOverrides(ctx, s.db, lineID, from, to)
}

func listOverrides(ctx context.Context, db *gorm.DB, lineID uuid.UUID, from, to calendar.Date) ([]Override, error) {
	ms, err := repository.NewGormOverrideRepository(db).ListInRange(ctx, lineID, from, to)
	if err != nil {
		return nil, err
	}
	return overridesFromModel(ms), nil
}

// validateOverride: даты обязательны, start <= end, часы >= 0.
// Часы округляются до сотых, как хранит колонка numeric(10,2).
func validateOverride(spec *OverrideSpec) error {
	if spec.StartDate.IsZero() || spec.EndDate.IsZero() {
		return invalidf("override start_date and end_date are required")
	}
	if spec.EndDate.Before(spec.StartDate) {
		return invalidf("override start_date %s is after end_date %s", spec.StartDate, spec.EndDate)
	}
	if spec.TotalHours.IsNegative() {
		return invalidf("override total_hours must be non-negative, got %s", spec.TotalHours)
	}
	if len(spec.ShiftConfig) > 0 && !json.Valid(spec.ShiftConfig) {
		return invalidf("override shift_config is not valid JSON")
	}
	spec.TotalHours = spec.TotalHours.Round(2)
	spec.Reason = strings.TrimSpace(spec.Reason)
	return nil
}

func applyOverridePatch(spec *OverrideSpec, p OverridePatch) {
	if p.StartDate != nil {
		spec.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		spec.EndDate = *p.EndDate
	}
	if p.TotalHours != nil {
		spec.TotalHours = *p.TotalHours
	}
	if p.Reason != nil {
		spec.Reason = *p.Reason
	}
	if p.ShiftConfig != nil {
		spec.ShiftConfig = *p.ShiftConfig
	}
}
