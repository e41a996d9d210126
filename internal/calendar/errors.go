package calendar

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("calendar not found")
	ErrAlreadyExists = errors.New("calendar already exists")
	// ErrConflict is a uniqueness violation reported by the store itself, e.g.
	// two creations of the same id racing past the existence check, or an
	// event id already owned by another calendar.
	ErrConflict = errors.New("calendar storage conflict")
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
