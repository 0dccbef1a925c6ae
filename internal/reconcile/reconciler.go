package reconcile

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/capacity"
	"github.com/Leganyst/production-scheduler/internal/model"
	"github.com/Leganyst/production-scheduler/internal/placement"
	"github.com/Leganyst/production-scheduler/internal/repository"
)

const DefaultBatchSize = 500

// LinePlacer — пересчёт раскладки линии.
type LinePlacer interface {
	PlaceLine(ctx context.Context, lineID uuid.UUID, anchor calendar.Date) ([]placement.Assignment, error)
}

// Result — итог одного прохода Drain.
type Result struct {
	Processed int         `json:"processed"`
	Failed    int         `json:"failed"`
	Lines     []uuid.UUID `json:"lines"`
	// Ошибки раскладки по линиям; события при этом уже обработаны.
	PlacementErrors map[uuid.UUID]string `json:"placement_errors,omitempty"`
}

type Reconciler struct {
	db        *gorm.DB
	placer    LinePlacer
	now       func() time.Time
	log       *log.Logger
	batchSize int

	// Drain не должен выполняться параллельно сам с собой.
	mu sync.Mutex
}

func NewReconciler(db *gorm.DB, placer LinePlacer, now func() time.Time, logger *log.Logger) *Reconciler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Reconciler{
		db:        db,
		placer:    placer,
		now:       now,
		log:       logger,
		batchSize: DefaultBatchSize,
	}
}

// Drain применяет накопившиеся события и пересчитывает раскладку
// каждой затронутой линии ровно один раз.
func (r *Reconciler) Drain(ctx context.Context) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := Result{Lines: []uuid.UUID{}}

	events, err := repository.NewGormChangeEventRepository(r.db).ListPending(ctx, r.batchSize)
	if err != nil {
		return res, fmt.Errorf("load pending events: %w", err)
	}

	for i := range events {
		ev := &events[i]
		msg := ""
		if err := r.apply(ctx, ev); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			msg = err.Error()
			res.Failed++
			r.log.Printf("reconcile: event %s (%s %s): %v", ev.ID, ev.ChangeType, ev.WONumber, err)
		}
		if err := repository.NewGormChangeEventRepository(r.db).MarkProcessed(ctx, ev.ID, r.now().UTC(), msg); err != nil {
			return res, fmt.Errorf("mark event %s processed: %w", ev.ID, err)
		}
		res.Processed++
	}

	lines, err := repository.NewGormWorkOrderRepository(r.db).LinesNeedingPlacement(ctx)
	if err != nil {
		return res, fmt.Errorf("load lines needing placement: %w", err)
	}

	for _, lineID := range lines {
		anchor, err := r.today(ctx, lineID)
		if err == nil {
			_, err = r.placer.PlaceLine(ctx, lineID, anchor)
		}
		if err != nil {
			if res.PlacementErrors == nil {
				res.PlacementErrors = map[uuid.UUID]string{}
			}
			res.PlacementErrors[lineID] = err.Error()
			r.log.Printf("reconcile: place line %s: %v", lineID, err)
			continue
		}
		res.Lines = append(res.Lines, lineID)
	}

	if res.Processed > 0 || len(lines) > 0 {
		r.log.Printf("reconcile: %d events (%d failed), %d lines re-placed", res.Processed, res.Failed, len(res.Lines))
	}
	return res, nil
}

// apply переносит одно изменение на заказ и помечает его к раскладке.
func (r *Reconciler) apply(ctx context.Context, ev *model.ChangeEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := repository.NewGormWorkOrderRepository(tx)

		wo, err := orders.GetByWONumber(ctx, ev.WONumber)
		if err != nil {
			if repository.IsNotFound(err) {
				return fmt.Errorf("%w: work order %s", capacity.ErrNotFound, ev.WONumber)
			}
			return err
		}

		value := strings.TrimSpace(ev.NewValue)

		switch ev.ChangeType {
		case model.ChangeCreated:

		case model.ChangeDateChanged:
			if value == "" {
				wo.CetecShipDate = nil
				break
			}
			d, err := calendar.ParseDate(value)
			if err != nil {
				return fmt.Errorf("%w: ship date: %v", capacity.ErrInvalid, err)
			}
			wo.CetecShipDate = model.DatePtr(d)

		case model.ChangeQtyChanged:
			qty, err := strconv.Atoi(value)
			if err != nil || qty < 0 {
				return fmt.Errorf("%w: quantity %q", capacity.ErrInvalid, ev.NewValue)
			}
			wo.Quantity = qty

		case model.ChangeLocationChanged:
			left := wo.CurrentLocation == model.LocationSMTProduction && value != model.LocationSMTProduction
			wo.CurrentLocation = value
			if left {
				if err := repository.NewGormPlacementRepository(tx).DeleteByWorkOrder(ctx, wo.ID); err != nil {
					return err
				}
			}

		case model.ChangeMaterialChanged:
			wo.MaterialStatus = value

		default:
			return fmt.Errorf("%w: unknown change type %q", capacity.ErrInvalid, ev.ChangeType)
		}

		if ev.CetecOrdlineID != nil {
			wo.CetecOrdlineID = ev.CetecOrdlineID
		}
		wo.NeedsPlacement = wo.LineID != nil
		return orders.Update(ctx, wo)
	})
}

// today — текущая дата в часовом поясе линии.
func (r *Reconciler) today(ctx context.Context, lineID uuid.UUID) (calendar.Date, error) {
	line, err := repository.NewGormLineRepository(r.db).GetByID(ctx, lineID)
	if err != nil {
		if repository.IsNotFound(err) {
			return calendar.Date{}, capacity.ErrLineNotFound
		}
		return calendar.Date{}, err
	}
	loc, err := time.LoadLocation(line.TimeZone)
	if err != nil {
		r.log.Printf("reconcile: line %s: bad time zone %q, using UTC", lineID, line.TimeZone)
		loc = time.UTC
	}
	return calendar.DateOf(r.now().In(loc)), nil
}
