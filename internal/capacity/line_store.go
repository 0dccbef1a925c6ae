package capacity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/model"
	"github.com/Leganyst/production-scheduler/internal/repository"
)

// LineStore управляет производственными линиями.
// Имя уникально среди активных линий; линии не удаляются, только деактивируются.
type LineStore struct {
	base
	defaultTZ string
}

func (s *LineStore) Create(ctx context.Context, spec LineSpec) (*Line, error) {
	m := &model.Line{
		Name:                strings.TrimSpace(spec.Name),
		DefaultHoursPerDay:  spec.DefaultHoursPerDay,
		DefaultHoursPerWeek: spec.DefaultHoursPerWeek,
		Active:              true,
		OrderPosition:       spec.OrderPosition,
		TimeZone:            spec.TimeZone,
	}
	if m.TimeZone == "" {
		m.TimeZone = s.defaultTZ
	}
	if spec.SpecialCustomerName != "" {
		name := spec.SpecialCustomerName
		m.SpecialCustomerName = &name
	}
	if err := validateLine(m); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(uuid.Nil)
	defer unlock()

	now := s.now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now

	err := s.inTx(ctx, func(tx *gorm.DB) error {
		repo := repository.NewGormLineRepository(tx)
		taken, err := repo.ActiveNameTaken(ctx, m.Name, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return invalidf("active line %q already exists", m.Name)
		}
		return repo.Create(ctx, m)
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	s.log.Printf("capacity: line %s (%s) created", m.ID, m.Name)
	l := lineFromModel(m)
	return &l, nil
}

func (s *LineStore) Update(ctx context.Context, id uuid.UUID, patch LinePatch) (*Line, error) {
	unlock := s.locks.lock(uuid.Nil)
	defer unlock()

	var out Line
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		repo := repository.NewGormLineRepository(tx)
		m, err := repo.GetByID(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrLineNotFound
			}
			return err
		}

		applyLinePatch(m, patch)
		if err := validateLine(m); err != nil {
			return err
		}
		if m.Active {
			taken, err := repo.ActiveNameTaken(ctx, m.Name, m.ID)
			if err != nil {
				return err
			}
			if taken {
				return invalidf("active line %q already exists", m.Name)
			}
		}

		m.UpdatedAt = s.now().UTC()
		if err := repo.Update(ctx, m); err != nil {
			return err
		}
		out = lineFromModel(m)
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &out, nil
}

// Deactivate — мягкое удаление. Смены и переопределения остаются.
func (s *LineStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	inactive := false
	_, err := s.Update(ctx, id, LinePatch{Active: &inactive})
	return err
}

func (s *LineStore) Get(ctx context.Context, id uuid.UUID) (*Line, error) {
	if id == uuid.Nil {
		return nil, invalidf("line id is required")
	}
	m, err := repository.NewGormLineRepository(s.db).GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrLineNotFound
		}
		return nil, err
	}
	l := lineFromModel(m)
	return &l, nil
}

func (s *LineStore) List(ctx context.Context, activeOnly bool) ([]Line, error) {
	ms, err := repository.NewGormLineRepository(s.db).List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]Line, 0, len(ms))
	for i := range ms {
		out = append(out, lineFromModel(&ms[i]))
	}
	return out, nil
}

// FindLine реализует calendar.LineLookup.
func (s *LineStore) FindLine(ctx context.Context, id uuid.UUID) (*calendar.Line, error) {
	return lineLookup{repo: repository.NewGormLineRepository(s.db)}.FindLine(ctx, id)
}

func applyLinePatch(m *model.Line, p LinePatch) {
	if p.Name != nil {
		m.Name = strings.TrimSpace(*p.Name)
	}
	if p.DefaultHoursPerDay != nil {
		m.DefaultHoursPerDay = *p.DefaultHoursPerDay
	}
	if p.DefaultHoursPerWeek != nil {
		m.DefaultHoursPerWeek = *p.DefaultHoursPerWeek
	}
	if p.OrderPosition != nil {
		m.OrderPosition = *p.OrderPosition
	}
	if p.SpecialCustomerName != nil {
		if *p.SpecialCustomerName == "" {
			m.SpecialCustomerName = nil
		} else {
			name := *p.SpecialCustomerName
			m.SpecialCustomerName = &name
		}
	}
	if p.TimeZone != nil {
		m.TimeZone = *p.TimeZone
	}
	if p.Active != nil {
		m.Active = *p.Active
	}
}

func validateLine(m *model.Line) error {
	if m.Name == "" {
		return invalidf("line name is required")
	}
	if m.DefaultHoursPerDay.IsNegative() || m.DefaultHoursPerWeek.IsNegative() {
		return invalidf("default hours must be non-negative")
	}
	if _, err := time.LoadLocation(m.TimeZone); err != nil {
		return invalidf("unknown time zone %q", m.TimeZone)
	}
	m.DefaultHoursPerDay = m.DefaultHoursPerDay.Round(2)
	m.DefaultHoursPerWeek = m.DefaultHoursPerWeek.Round(2)
	return nil
}
