package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	// ErrDuplicate — нарушение уникальности.
	ErrDuplicate = errors.New("duplicate record")
	// ErrReference — нарушение внешнего ключа.
	ErrReference = errors.New("referenced record missing or still in use")
)

// translate приводит ошибки драйверов к ErrDuplicate / ErrReference.
// gorm.ErrRecordNotFound и прочие ошибки проходят как есть.
func translate(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Join(ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return errors.Join(ErrReference, err)
	}

	// pgx
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		switch pgxErr.Code {
		case "23505":
			return errors.Join(ErrDuplicate, err)
		case "23503":
			return errors.Join(ErrReference, err)
		}
		return err
	}
	// lib/pq
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case "23505":
			return errors.Join(ErrDuplicate, err)
		case "23503":
			return errors.Join(ErrReference, err)
		}
	}
	return err
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
