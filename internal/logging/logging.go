// Package logging provides the configured slog logger used by every
// component. Output format is text on a TTY and JSON otherwise, overridable
// with LOG_FORMAT; verbosity comes from LOG_LEVEL (default info).
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// New creates a configured logger.
func New() *slog.Logger {
	opts := &slog.HandlerOptions{Level: Level(os.Getenv("LOG_LEVEL"))}

	var handler slog.Handler
	format := strings.ToLower(os.Getenv("LOG_FORMAT"))
	if format == "text" || (format == "" && isTerminal(os.Stdout)) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// SetDefault creates a logger and installs it as the process default.
func SetDefault() *slog.Logger {
	logger := New()
	slog.SetDefault(logger)
	return logger
}

// Level converts a level name to a slog.Level, defaulting to info.
func Level(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}
