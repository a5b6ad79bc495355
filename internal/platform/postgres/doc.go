// Package postgres provides the PostgreSQL implementation of
// store.SessionStore, used when the HTTP session API runs as several
// replicas, together with the embedded goose migrations for its schema.
package postgres
