// Package placement раскладывает заказы линии по календарным дням
// на основе эффективной мощности. Самая мелкая гранулярность — один день.
package placement

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/capacity"
)

// CapacitySource — то, что раскладке нужно от движка мощностей.
type CapacitySource interface {
	GetCalendar(ctx context.Context, lineID uuid.UUID, start calendar.Date, nDays int) ([]capacity.EffectiveDay, error)
}

// Job — заказ с оценкой длительности в часах.
type Job struct {
	WorkOrderID uuid.UUID
	WONumber    string
	Hours       decimal.Decimal
}

type Slot struct {
	Date  calendar.Date   `json:"date"`
	Hours decimal.Decimal `json:"hours"`
}

// Assignment — дни, которые занимает заказ. Для заказа нулевой длительности Slots пуст,
// а Start == End указывает на день, с которого стартовал бы следующий заказ.
type Assignment struct {
	WorkOrderID uuid.UUID       `json:"work_order_id"`
	WONumber    string          `json:"wo_number"`
	Hours       decimal.Decimal `json:"hours"`
	Start       calendar.Date   `json:"start"`
	End         calendar.Date   `json:"end"`
	Slots       []Slot          `json:"slots"`
}

type Placer struct {
	capacity    CapacitySource
	horizonDays int
}

func NewPlacer(src CapacitySource, horizonDays int) *Placer {
	if horizonDays <= 0 {
		horizonDays = 366
	}
	return &Placer{capacity: src, horizonDays: horizonDays}
}

// Place раскладывает очередь jobs по порядку начиная с anchor.
// Соседние заказы делят остаток дня; дни с нулевой мощностью пропускаются.
// Весь горизонт читается одним запросом календаря, поэтому результат
// определяется одним снимком мощностей.
func (p *Placer) Place(ctx context.Context, lineID uuid.UUID, anchor calendar.Date, jobs []Job) ([]Assignment, error) {
	if anchor.IsZero() {
		return nil, fmt.Errorf("%w: anchor date is required", capacity.ErrInvalid)
	}
	if len(jobs) == 0 {
		return []Assignment{}, nil
	}

	days, err := p.capacity.GetCalendar(ctx, lineID, anchor, p.horizonDays)
	if err != nil {
		return nil, err
	}

	out := make([]Assignment, 0, len(jobs))
	idx := 0
	left := decimal.Zero
	if len(days) > 0 {
		left = days[0].Hours
	}

	for _, job := range jobs {
		if job.Hours.IsNegative() {
			return nil, fmt.Errorf("%w: work order %s has negative duration", capacity.ErrInvalid, job.WONumber)
		}
		a := Assignment{
			WorkOrderID: job.WorkOrderID,
			WONumber:    job.WONumber,
			Hours:       job.Hours,
			Slots:       []Slot{},
		}
		need := job.Hours

		for need.IsPositive() {
			if idx >= len(days) {
				return nil, fmt.Errorf("%w: work order %s does not fit into %d days from %s",
					capacity.ErrInvalid, job.WONumber, p.horizonDays, anchor)
			}
			if !left.IsPositive() {
				idx++
				if idx < len(days) {
					left = days[idx].Hours
				}
				continue
			}

			take := decimal.Min(left, need)
			a.Slots = append(a.Slots, Slot{Date: days[idx].Date, Hours: take})
			need = need.Sub(take)
			left = left.Sub(take)
		}

		if len(a.Slots) > 0 {
			a.Start = a.Slots[0].Date
			a.End = a.Slots[len(a.Slots)-1].Date
		} else {
			a.Start = anchor.AddDays(min(idx, len(days)-1))
			a.End = a.Start
		}
		out = append(out, a)
	}
	return out, nil
}

// LatestStart — самая поздняя дата, начиная с которой мощности линии
// до due (не включая) хватает на hours часов.
func (p *Placer) LatestStart(ctx context.Context, lineID uuid.UUID, due calendar.Date, hours decimal.Decimal) (calendar.Date, error) {
	if due.IsZero() {
		return calendar.Date{}, fmt.Errorf("%w: due date is required", capacity.ErrInvalid)
	}
	if hours.IsNegative() {
		return calendar.Date{}, fmt.Errorf("%w: hours must be non-negative", capacity.ErrInvalid)
	}
	if !hours.IsPositive() {
		return due, nil
	}

	from := due.AddDays(-p.horizonDays)
	days, err := p.capacity.GetCalendar(ctx, lineID, from, p.horizonDays)
	if err != nil {
		return calendar.Date{}, err
	}

	acc := decimal.Zero
	for i := len(days) - 1; i >= 0; i-- {
		acc = acc.Add(days[i].Hours)
		if acc.GreaterThanOrEqual(hours) {
			return days[i].Date, nil
		}
	}
	return calendar.Date{}, fmt.Errorf("%w: %s h do not fit into %d days before %s",
		capacity.ErrInvalid, hours, p.horizonDays, due)
}
