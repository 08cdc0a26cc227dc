package services

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"MINDBRIDGE_BACK-END/internal/support"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = support.ErrForbidden
	ErrValidation          = errors.New("validation failed")
	ErrActiveRequestExists = errors.New("an active support request already exists between these users")
	ErrInvalidTransition   = support.ErrInvalidTransition
	ErrNoConnection        = errors.New("no accepted support request between these users")
	ErrConflict            = errors.New("already exists")
)

const (
	uniqueViolation      = "23505"
	foreignKeyViolation  = "23503"
	activePairIndex      = "support_requests_active_pair_idx"
	usersEmailConstraint = "users_email_key"
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// pgCode returns the SQLSTATE and constraint name of a Postgres error
func pgCode(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}
