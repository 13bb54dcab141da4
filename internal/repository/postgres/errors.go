package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the mind map repository reacts to.
const (
	codeUniqueViolation   = "23505"
	codeInvalidTextFormat = "22P02"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsPgDuplicateError reports a unique constraint violation, e.g. an id collision.
func IsPgDuplicateError(err error) bool { return pgCode(err) == codeUniqueViolation }

// IsPgNoRowsError reports an empty single-row result.
func IsPgNoRowsError(err error) bool { return errors.Is(err, pgx.ErrNoRows) }

// IsPgInvalidTextError reports malformed input such as an id that is not a UUID.
// Callers treat it as not found.
func IsPgInvalidTextError(err error) bool { return pgCode(err) == codeInvalidTextFormat }
