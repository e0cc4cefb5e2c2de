package xlog

import (
	"context"
	"io"
	"log/slog"
)

var DisabledLogger = slog.New(DisabledLogHandler{})

type DisabledLogHandler struct{}

func (d DisabledLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return false
}

func (d DisabledLogHandler) Handle(ctx context.Context, record slog.Record) error {
	return nil
}

func (d DisabledLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return d
}

func (d DisabledLogHandler) WithGroup(name string) slog.Handler {
	return d
}

// New returns the logger for the given verbosity.
// Quiet wins over debug; without either only warnings and errors are written.
func New(w io.Writer, debug, quiet bool) *slog.Logger {
	if quiet {
		return DisabledLogger
	}

	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
