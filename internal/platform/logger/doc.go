// Package logger provides structured logging for the application using
// log/slog with a JSON handler, plus helpers for carrying a logger and a
// correlation ID through a context.Context.
package logger
