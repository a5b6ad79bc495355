// Package store defines session-scoped key/value storage and the helpers
// shared by its SQL implementations.
//
// A SessionStore holds small string values per session id. The study session
// uses it to remember a payment entitlement across page loads or CLI runs.
// Implementations live in this package (memory) and under internal/platform
// (sqlite, postgres).
package store
