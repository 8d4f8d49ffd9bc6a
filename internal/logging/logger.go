// Package logging configures slog: JSON to stdout, and optionally ERROR+
// records persisted to system_logs.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs the default logger. Records go to stdout as JSON and to any
// extra handlers (see PGHandler).
func Setup(env string, extra ...slog.Handler) *slog.Logger {
	return setup(stdout, env, extra...)
}

var stdout io.Writer = os.Stdout

func setup(w io.Writer, env string, extra ...slog.Handler) *slog.Logger {
	level := slog.LevelInfo
	if env == "" || env == "development" {
		level = slog.LevelDebug
	}

	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	if len(extra) > 0 {
		handler = NewMultiHandler(append([]slog.Handler{handler}, extra...)...)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
