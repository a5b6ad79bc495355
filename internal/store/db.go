package store

import (
	"context"
	"database/sql"
)

// DBTX abstracts *sql.DB and *sql.Tx so SQL session stores can run the same
// statements inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DeleteKeys removes keys of one session through db, using the given
// placeholder style ("$1" for postgres, "?" for sqlite).
func DeleteKeys(ctx context.Context, db DBTX, query string, sessionID string, keys []string) error {
	for _, k := range keys {
		if _, err := db.ExecContext(ctx, query, sessionID, k); err != nil {
			return err
		}
	}
	return nil
}
