// Package reconcile принимает ленту изменений из ERP и применяет её к заказам.
// Шаблоны смен и переопределения мощности отсюда не меняются никогда:
// изменения ERP влияют только на то, какие заказы и в каком порядке раскладываются.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/production-scheduler/internal/capacity"
	"github.com/Leganyst/production-scheduler/internal/model"
	"github.com/Leganyst/production-scheduler/internal/repository"
)

// Change — одно изменение записи в ERP.
type Change struct {
	WONumber       string
	Type           model.ChangeType
	FieldName      string
	OldValue       string
	NewValue       string
	CetecOrdlineID *int64
	OccurredAt     time.Time
}

// Feed сохраняет входящие изменения в change_events.
type Feed struct {
	db  *gorm.DB
	now func() time.Time
}

func NewFeed(db *gorm.DB, now func() time.Time) *Feed {
	if now == nil {
		now = time.Now
	}
	return &Feed{db: db, now: now}
}

// Ingest проверяет и сохраняет изменение. Применяется оно при следующем Drain.
func (f *Feed) Ingest(ctx context.Context, c Change) (uuid.UUID, error) {
	c.WONumber = strings.TrimSpace(c.WONumber)
	if c.WONumber == "" {
		return uuid.Nil, fmt.Errorf("%w: wo_number is required", capacity.ErrInvalid)
	}
	if !c.Type.Valid() {
		return uuid.Nil, fmt.Errorf("%w: unknown change type %q", capacity.ErrInvalid, c.Type)
	}

	now := f.now().UTC()
	occurred := c.OccurredAt
	if occurred.IsZero() {
		occurred = now
	}

	ev := &model.ChangeEvent{
		WONumber:       c.WONumber,
		ChangeType:     c.Type,
		FieldName:      c.FieldName,
		OldValue:       c.OldValue,
		NewValue:       c.NewValue,
		CetecOrdlineID: c.CetecOrdlineID,
		OccurredAt:     occurred.UTC(),
		CreatedAt:      now,
	}
	if err := repository.NewGormChangeEventRepository(f.db).Create(ctx, ev); err != nil {
		return uuid.Nil, fmt.Errorf("save change event: %w", err)
	}
	return ev.ID, nil
}

// AddWorkOrder заводит заказ, пришедший из ERP, и пишет событие created.
func (f *Feed) AddWorkOrder(ctx context.Context, wo *model.WorkOrder) error {
	wo.WONumber = strings.TrimSpace(wo.WONumber)
	if wo.WONumber == "" {
		return fmt.Errorf("%w: wo_number is required", capacity.ErrInvalid)
	}
	if wo.Quantity < 0 || wo.TimeMinutes.IsNegative() || wo.SetupTimeHours.IsNegative() {
		return fmt.Errorf("%w: work order %s has negative quantity or duration", capacity.ErrInvalid, wo.WONumber)
	}

	now := f.now().UTC()
	return f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewGormWorkOrderRepository(tx).Create(ctx, wo); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicate):
				return fmt.Errorf("%w: work order %s already exists", capacity.ErrInvalid, wo.WONumber)
			case errors.Is(err, repository.ErrReference):
				return fmt.Errorf("%w: work order %s references an unknown line", capacity.ErrInvalid, wo.WONumber)
			}
			return err
		}
		return repository.NewGormChangeEventRepository(tx).Create(ctx, &model.ChangeEvent{
			WONumber:       wo.WONumber,
			ChangeType:     model.ChangeCreated,
			CetecOrdlineID: wo.CetecOrdlineID,
			OccurredAt:     now,
			CreatedAt:      now,
		})
	})
}

// Pending — необработанные события в порядке поступления.
func (f *Feed) Pending(ctx context.Context, limit int) ([]model.ChangeEvent, error) {
	return repository.NewGormChangeEventRepository(f.db).ListPending(ctx, limit)
}
