package logger

import (
	"log/slog"
	"os"
)

// New returns a structured JSON logger using slog.
// Local environments log at debug level; everything else at info.
func New(environment string) *slog.Logger {
	level := slog.LevelInfo
	if environment == "local" || environment == "dev" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{
		Level: level,
	}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler).With("service", "sbt")
}
