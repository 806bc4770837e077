package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/merzah/merzah/internal/apperr"
)

const foreignKeyViolation = "23503"

// translate maps driver errors onto apperr codes. what names the record for
// not-found messages.
func translate(err error, what, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.New(apperr.CodeNotFound, what+" not found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return apperr.Wrap(apperr.CodeNotFound, "referenced record not found", err)
	}
	return apperr.Wrap(apperr.CodePersistenceFailure, op, err)
}
