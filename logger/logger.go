// Package logger sets up structured logging for the control surface.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Init builds a slog.Logger with the given level ("debug", "info", "warn",
// "error") and format ("text" or "json"), installs it as the slog default,
// and returns it. Unknown values fall back to info/text.
func Init(level, format string) *slog.Logger {
	logLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
