package placement

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/capacity"
	"github.com/Leganyst/production-scheduler/internal/model"
	"github.com/Leganyst/production-scheduler/internal/repository"
)

// Service раскладывает очередь линии и сохраняет результат в placements.
type Service struct {
	db     *gorm.DB
	placer *Placer
	log    *log.Logger
}

func NewService(db *gorm.DB, placer *Placer, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{db: db, placer: placer, log: logger}
}

func (s *Service) Placer() *Placer { return s.placer }

// PlaceLine пересчитывает раскладку всей очереди линии от anchor.
// Старая раскладка заменяется целиком, флаг NeedsPlacement снимается только
// с прочитанных заказов: пришедшие во время раскладки ждут следующего прохода.
func (s *Service) PlaceLine(ctx context.Context, lineID uuid.UUID, anchor calendar.Date) ([]Assignment, error) {
	queue, err := repository.NewGormWorkOrderRepository(s.db).ListQueue(ctx, lineID)
	if err != nil {
		return nil, fmt.Errorf("load queue: %w", err)
	}

	jobs := make([]Job, 0, len(queue))
	placed := make([]uuid.UUID, 0, len(queue))
	for i := range queue {
		placed = append(placed, queue[i].ID)
		jobs = append(jobs, Job{
			WorkOrderID: queue[i].ID,
			WONumber:    queue[i].WONumber,
			Hours:       queue[i].Hours(),
		})
	}

	assignments, err := s.placer.Place(ctx, lineID, anchor, jobs)
	if err != nil {
		return nil, err
	}

	var rows []model.Placement
	for _, a := range assignments {
		for _, slot := range a.Slots {
			rows = append(rows, model.Placement{
				WorkOrderID: a.WorkOrderID,
				LineID:      lineID,
				Day:         model.DateOf(slot.Date),
				Hours:       slot.Hours.Round(2),
			})
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewGormPlacementRepository(tx).ReplaceForLine(ctx, lineID, rows); err != nil {
			return err
		}
		return repository.NewGormWorkOrderRepository(tx).ClearNeedsPlacement(ctx, lineID, placed)
	})
	if err != nil {
		return nil, fmt.Errorf("save placements: %w", err)
	}

	s.log.Printf("placement: line %s: %d work orders over %d day slots from %s", lineID, len(assignments), len(rows), anchor)
	return assignments, nil
}

// Schedule возвращает сохранённую раскладку линии за [from, to].
func (s *Service) Schedule(ctx context.Context, lineID uuid.UUID, from, to calendar.Date) ([]model.Placement, error) {
	if _, err := calendar.NewDateRange(from, to); err != nil {
		return nil, fmt.Errorf("%w: %v", capacity.ErrInvalid, err)
	}
	return repository.NewGormPlacementRepository(s.db).ListByLine(ctx, lineID, from, to)
}

// ForgetWorkOrder убирает раскладку одного заказа (заказ ушёл из SMT).
func (s *Service) ForgetWorkOrder(ctx context.Context, workOrderID uuid.UUID) error {
	return repository.NewGormPlacementRepository(s.db).DeleteByWorkOrder(ctx, workOrderID)
}
