package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // Registers the pgx driver
	"github.com/phrazzld/study-buddy/internal/store"
)

// Open opens a pgx-backed *sql.DB and verifies connectivity.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// PostgresSessionStore implements store.SessionStore on PostgreSQL.
type PostgresSessionStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.SessionStore = (*PostgresSessionStore)(nil)

// NewPostgresSessionStore creates a store over db. The schema must have been
// migrated with Migrate.
func NewPostgresSessionStore(db *sql.DB, logger *slog.Logger) *PostgresSessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSessionStore{
		db:     db,
		logger: logger.With("component", "postgres_session_store"),
	}
}

// Get implements store.SessionStore.
func (s *PostgresSessionStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	if err := store.ValidateKey(sessionID, key); err != nil {
		return "", err
	}

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_values WHERE session_id = $1 AND key = $2`,
		sessionID, key,
	).Scan(&value)
	if err != nil {
		return "", MapError(err)
	}
	return value, nil
}

// Set implements store.SessionStore.
func (s *PostgresSessionStore) Set(ctx context.Context, sessionID, key, value string) error {
	if err := store.ValidateKey(sessionID, key); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_values (session_id, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (session_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, sessionID, key, value)
	if err != nil {
		s.logger.Error("failed to store session value", "error", err, "session_id", sessionID, "key", key)
		return store.OpFailed("set", sessionID, MapError(err))
	}
	return nil
}

// Delete implements store.SessionStore. The keys are removed in one transaction.
func (s *PostgresSessionStore) Delete(ctx context.Context, sessionID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return store.DeleteKeys(ctx, tx,
			`DELETE FROM session_values WHERE session_id = $1 AND key = $2`, sessionID, keys)
	})
	if err != nil {
		return store.OpFailed("delete", sessionID, MapError(err))
	}
	return nil
}

// DeleteSession implements store.SessionStore.
func (s *PostgresSessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM session_values WHERE session_id = $1`, sessionID); err != nil {
		return store.OpFailed("delete_session", sessionID, MapError(err))
	}
	return nil
}
