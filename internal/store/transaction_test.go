package store_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/phrazzld/study-buddy/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "tx.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n))
	return n
}

func TestRunInTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("commit on success", func(t *testing.T) {
		db := openTestDB(t)
		err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `INSERT INTO kv (k, v) VALUES ('a', '1')`)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 1, countRows(t, db))
	})

	t.Run("rollback on error", func(t *testing.T) {
		db := openTestDB(t)
		boom := errors.New("boom")
		err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, `INSERT INTO kv (k, v) VALUES ('a', '1')`); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, countRows(t, db))
	})

	t.Run("rollback and repanic", func(t *testing.T) {
		db := openTestDB(t)
		assert.Panics(t, func() {
			_ = store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
				_, _ = tx.ExecContext(ctx, `INSERT INTO kv (k, v) VALUES ('a', '1')`)
				panic("boom")
			})
		})
		assert.Equal(t, 0, countRows(t, db))
	})

	t.Run("delete keys inside transaction", func(t *testing.T) {
		db := openTestDB(t)
		_, err := db.Exec(`INSERT INTO kv (k, v) VALUES ('s:a', '1'), ('s:b', '2')`)
		require.NoError(t, err)

		err = store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return store.DeleteKeys(ctx, tx, `DELETE FROM kv WHERE k = ? || ':' || ?`, "s", []string{"a", "b"})
		})
		require.NoError(t, err)
		assert.Equal(t, 0, countRows(t, db))
	})
}
