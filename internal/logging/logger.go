// Package logging builds the slog loggers used by the CLI and library.
package logging

import (
	"io"
	"log/slog"
)

// New creates a text logger on w at the given level.
// The "error" key is shortened to "err" so records read the same whether
// the caller wrote slog.Any("error", err) or "err", err.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// LevelFor maps the CLI verbosity flags to a level.
// Quiet wins over verbose.
func LevelFor(quiet, verbose bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case verbose:
		return slog.LevelDebug
	default:
		return slog.LevelWarn
	}
}
