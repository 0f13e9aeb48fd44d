package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/pastryjoy-api/internal/domain/repository"
)

// PostgreSQL error codes
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

// MapError translates driver errors into repository store errors, keeping the
// original error in the chain text.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %v", repository.ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return fmt.Errorf("%w (%s): %v", repository.ErrDuplicate, pgErr.ConstraintName, err)
		case foreignKeyViolationCode:
			return fmt.Errorf("%w (%s): %v", repository.ErrInvalidReference, pgErr.ConstraintName, err)
		case checkViolationCode:
			return fmt.Errorf("%w: check %s: %v", repository.ErrConstraint, pgErr.ConstraintName, err)
		case notNullViolationCode:
			return fmt.Errorf("%w: not null %s: %v", repository.ErrConstraint, pgErr.ColumnName, err)
		}
	}
	return err
}

func notFound(what string, id any) error {
	return fmt.Errorf("%w: %s %v", repository.ErrNotFound, what, id)
}
