package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"liquorpos/internal/core/apperror"
)

// columnList joins column names for hand-written RETURNING clauses.
func columnList(columns []string) string {
	return strings.Join(columns, ", ")
}

// PostgreSQL error codes we care about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// mapError converts low-level pgx errors into AppErrors so domain code
// can branch on duplicate/constraint failures without importing pgx.
func mapError(err error, entity string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperror.NewDuplicate(entity, pgErr.ConstraintName, "").WithCause(err)
		case pgForeignKeyViolation:
			return apperror.NewValidation(entity + " references a missing record").WithCause(err)
		case pgCheckViolation:
			return apperror.NewValidation(entity + " violates constraint " + pgErr.ConstraintName).WithCause(err)
		}
	}
	return &apperror.AppError{
		Code:       apperror.CodeDatabase,
		Message:    "database error",
		HTTPStatus: 500,
		Err:        err,
	}
}
