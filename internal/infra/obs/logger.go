package obs

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// LogOptions selects the log format and verbosity. Development output is
// colored text via tint, anything else is JSON.
type LogOptions struct {
	Development bool
	Level       string
	Service     string
	Output      io.Writer
}

func NewLogger(opts LogOptions) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	level := parseLevel(opts.Level, opts.Development)

	var handler slog.Handler
	if opts.Development {
		handler = tint.NewHandler(out, &tint.Options{Level: level, TimeFormat: time.Kitchen, AddSource: true})
	} else {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level, AddSource: true})
	}
	logger := slog.New(handler)
	if opts.Service != "" {
		logger = logger.With("service", opts.Service)
	}
	return logger
}

// parseLevel falls back to debug in development and info elsewhere.
func parseLevel(raw string, development bool) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err == nil && raw != "" {
		return level
	}
	if development {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
