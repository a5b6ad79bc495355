package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/study-buddy/internal/store"
)

// SQLSTATE codes the session store distinguishes.
const (
	checkViolationCode   = "23514"
	notNullViolationCode = "23502"
	undefinedTableCode   = "42P01"
	queryCanceledCode    = "57014"
)

// ErrSchemaMissing is returned when the session table does not exist.
var ErrSchemaMissing = errors.New("session schema missing: run `studybuddy migrate up`")

// ErrQueryCanceled is returned when the server cancelled a statement.
var ErrQueryCanceled = errors.New("query canceled")

// sentinelFor maps a SQLSTATE to the error callers match on.
var sentinelFor = map[string]error{
	checkViolationCode:   store.ErrInvalidEntity,
	notNullViolationCode: store.ErrInvalidEntity,
	undefinedTableCode:   ErrSchemaMissing,
	queryCanceledCode:    ErrQueryCanceled,
}

// MapError translates driver errors into store and package sentinels. The
// original error is kept in the message; unknown errors pass through.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrSessionValueNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	sentinel, ok := sentinelFor[pgErr.Code]
	if !ok {
		return err
	}
	detail := pgErr.ConstraintName
	if detail == "" {
		detail = pgErr.ColumnName
	}
	if detail != "" {
		return fmt.Errorf("%w (%s): %v", sentinel, detail, err)
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
