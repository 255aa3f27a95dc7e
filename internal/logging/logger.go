// Package logging provides a thin structured-logging wrapper around
// log/slog. Output defaults to stderr so it never interleaves with the
// diff text the CLI writes to stdout.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps a *slog.Logger with the level knob the CLI's --verbose
// flag and DIFFSITTER_LOG environment variable drive.
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
}

// New constructs a Logger writing text-formatted records to w at the
// given level.
func New(w io.Writer, level slog.Level) *Logger {
	lv := &slog.LevelVar{}
	lv.Set(level)
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv})
	return &Logger{Logger: slog.New(handler), level: lv}
}

// Default returns a Logger writing to stderr, at the level named by
// DIFFSITTER_LOG ("debug", "info", "warn", or "error") if set and valid,
// Info otherwise. The CLI's --verbose flag overrides this afterward via
// SetLevel.
func Default() *Logger {
	level := slog.LevelInfo
	if raw := os.Getenv("DIFFSITTER_LOG"); raw != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(raw)); err == nil {
			level = parsed
		}
	}
	return New(os.Stderr, level)
}

// SetLevel adjusts the logger's minimum level at runtime, used by the
// CLI's --verbose flag.
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}
