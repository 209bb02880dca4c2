package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
)

// Translate maps driver errors onto ErrNotFound / ErrDuplicate. Both the
// lib/pq and the pgx driver are understood; anything else is returned as is.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	switch sqlState(err) {
	case sqlStateUniqueViolation:
		return ErrDuplicate
	case sqlStateForeignKeyViolation:
		return ErrNotFound
	}
	return err
}

func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
