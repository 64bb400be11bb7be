// Package log carries a `*slog.Logger` through a `context.Context`.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-logr/logr"
)

// New returns a text logger writing to `w`. An empty `level` means
// `slog.LevelInfo`; otherwise it is parsed with `slog.Level.UnmarshalText`
// (e.g., `DEBUG`, `warn`, `ERROR+2`).
func New(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	if level != "" {
		if err := l.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("unmarshaling log level `%s`: %w", level, err)
		}
	}
	return slog.New(
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}),
	), nil
}

func Context(ctx context.Context, logger *slog.Logger) context.Context {
	return logr.NewContextWithSlogLogger(ctx, logger)
}

// FromContext returns the logger stored by `Context`, or `slog.Default()` if
// there is none.
func FromContext(ctx context.Context) *slog.Logger {
	if logger := logr.FromContextAsSlogLogger(ctx); logger != nil {
		return logger
	}
	return slog.Default()
}
