// Package logger configures the application's structured logging using
// Go's standard library log/slog package, and provides helpers for
// carrying request- or item-scoped loggers through context.
package logger
