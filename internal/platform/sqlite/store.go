// Package sqlite implements store.SessionStore on an embedded SQLite
// database, so a terminal session can be resumed across runs.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/study-buddy/internal/store"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS session_values (
	session_id TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (session_id, key)
);`

// SessionStore is a store.SessionStore backed by SQLite.
type SessionStore struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

var _ store.SessionStore = (*SessionStore)(nil)

// Open opens (or creates) the database at dsn and applies the schema.
func Open(dsn string, logger *slog.Logger) (*SessionStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SessionStore{
		db:     db,
		logger: logger.With("component", "sqlite_session_store"),
		now:    time.Now,
	}, nil
}

// Close closes the database connection.
func (s *SessionStore) Close() error {
	return s.db.Close()
}

// Get implements store.SessionStore.
func (s *SessionStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	if err := store.ValidateKey(sessionID, key); err != nil {
		return "", err
	}

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_values WHERE session_id = ? AND key = ?`,
		sessionID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", store.ErrSessionValueNotFound, key)
	}
	if err != nil {
		return "", store.OpFailed("get", sessionID, err)
	}
	return value, nil
}

// Set implements store.SessionStore.
func (s *SessionStore) Set(ctx context.Context, sessionID, key, value string) error {
	if err := store.ValidateKey(sessionID, key); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_values (session_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (session_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, sessionID, key, value, s.now().UTC())
	if err != nil {
		return store.OpFailed("set", sessionID, err)
	}
	s.logger.Debug("session value stored", "session_id", sessionID, "key", key)
	return nil
}

// Delete implements store.SessionStore. All keys are removed in one transaction.
func (s *SessionStore) Delete(ctx context.Context, sessionID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return store.DeleteKeys(ctx, tx,
			`DELETE FROM session_values WHERE session_id = ? AND key = ?`, sessionID, keys)
	})
	if err != nil {
		return store.OpFailed("delete", sessionID, err)
	}
	return nil
}

// DeleteSession implements store.SessionStore.
func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM session_values WHERE session_id = ?`, sessionID); err != nil {
		return store.OpFailed("delete_session", sessionID, err)
	}
	return nil
}
