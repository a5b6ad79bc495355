// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package with a JSON handler for
// services and a colorized console handler for interactive use, and carries
// request-scoped loggers through context.
package logger
