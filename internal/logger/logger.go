// Package logger builds the process slog.Logger from the environment.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger returns a logger writing to stderr. LOG_LEVEL picks the level
// (debug, info, warn, error) and GO_ENV=production switches to JSON output.
func NewLogger() *slog.Logger {
	return New(os.Stderr)
}

// New is NewLogger with an explicit writer.
func New(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFromEnv()}

	var h slog.Handler
	if strings.EqualFold(os.Getenv("GO_ENV"), "production") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// Discard returns a logger that drops everything. Used by tests and by
// commands that print their own output.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Scope tags a log line with the component that produced it.
func Scope(name string) slog.Attr {
	return slog.String("scope", name)
}

// Error wraps err as an attribute under the "error" key.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}
