package capacity

import (
	"errors"
	"fmt"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/repository"
)

// Виды ошибок движка. Проверяются через errors.Is.
var (
	ErrInvalid             = errors.New("invalid")
	ErrNotFound            = errors.New("not found")
	ErrConflictingSnapshot = errors.New("conflicting snapshot")

	// ErrLineNotFound — частный случай ErrNotFound.
	ErrLineNotFound error = &kindError{msg: "line not found", parent: ErrNotFound}
)

type kindError struct {
	msg    string
	parent error
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.parent }

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}

// mapStoreError переводит ошибки репозиториев и примитивов в виды движка.
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, calendar.ErrLineNotFound):
		return ErrLineNotFound
	case errors.Is(err, calendar.ErrInvalidLineID):
		return invalidf("line id is required")
	case errors.Is(err, repository.ErrDuplicate):
		return invalidf("duplicate record")
	case errors.Is(err, repository.ErrReference):
		return invalidf("referenced record missing or still in use")
	}
	return err
}
