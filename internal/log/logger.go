// Package log centralizes structured logging setup and the field
// vocabulary used across the application.
package log

import (
	"log/slog"
	"os"
)

// Setup initializes the default slog logger with a text handler at the
// given level and returns it.
func Setup(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// WithComponent returns a logger tagged with a component name.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(FieldComponent, component)
}
