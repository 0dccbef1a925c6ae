package capacity

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/repository"
)

// base — общее для сторов: БД, замки линий, часы и лог.
type base struct {
	db    *gorm.DB
	locks *lineLocks
	now   func() time.Time
	log   *log.Logger
}

// inTx выполняет fn в транзакции. Репозитории внутри строятся на tx.
func (b *base) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return b.db.WithContext(ctx).Transaction(fn)
}

func (b *base) bump(ctx context.Context, tx *gorm.DB, name string) error {
	return repository.NewGormVersionRepository(tx).Bump(ctx, name)
}

// lineLookup — calendar.LineLookup поверх репозитория линий.
type lineLookup struct {
	repo repository.LineRepository
}

func (l lineLookup) FindLine(ctx context.Context, id uuid.UUID) (*calendar.Line, error) {
	m, err := l.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &calendar.Line{ID: m.ID, Name: m.Name, Active: m.Active, TimeZone: m.TimeZone}, nil
}

// requireLine проверяет существование линии в рамках db (обычно tx).
func requireLine(ctx context.Context, db *gorm.DB, id uuid.UUID) (*calendar.Line, error) {
	l, err := calendar.ValidateLine(ctx, lineLookup{repo: repository.NewGormLineRepository(db)}, id, false)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return l, nil
}
