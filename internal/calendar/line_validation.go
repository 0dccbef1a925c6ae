package calendar

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Ошибки проверки производственной линии.
var (
	ErrInvalidLineID = errors.New("invalid line id")
	ErrLineNotFound  = errors.New("line not found")
	ErrLineInactive  = errors.New("line is inactive")
)

// Линия в том виде, в каком её видит календарь.
type Line struct {
	ID       uuid.UUID
	Name     string
	Active   bool
	TimeZone string
}

// Источник данных о линиях.
// В сервисе это обёртка над репозиторием, в тестах — мок.
type LineLookup interface {
	FindLine(ctx context.Context, id uuid.UUID) (*Line, error)
}

// ValidateLine:
//   - проверяет идентификатор;
//   - достаёт линию из хранилища;
//   - при requireActive отклоняет деактивированные линии;
//   - возвращает линию или ошибку.
func ValidateLine(
	ctx context.Context,
	store LineLookup,
	id uuid.UUID,
	requireActive bool,
) (*Line, error) {
	if id == uuid.Nil {
		return nil, ErrInvalidLineID
	}

	l, err := store.FindLine(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrLineNotFound
	}

	if requireActive && !l.Active {
		return nil, ErrLineInactive
	}

	return l, nil
}
