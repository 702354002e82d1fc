package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New initializes a new slog logger and sets it as the default.
// LOG_FORMAT selects "json" or "text" (the default). LOG_LEVEL selects
// debug (the default), info, warn or error.
func New() {
	Install(os.Stdout)
}

// Install is New writing to w. The CLI logs to stderr so command output
// stays clean.
func Install(w io.Writer) {
	slog.SetDefault(slog.New(NewHandler(w, os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL"))))
}

// NewHandler builds the handler New installs.
func NewHandler(w io.Writer, format, level string) slog.Handler {
	switch strings.ToLower(format) {
	case "json":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: ParseLevel(level),
		})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     ParseLevel(level),
			AddSource: true, // Adds source file and line number
		})
	}
}

// ParseLevel maps a level name to slog.Level, defaulting to debug.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
