package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_RenamesErrorKey(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo)
	logger.Info("render failed", "error", errors.New("boom"), "index", 2)

	out := buf.String()
	if !strings.Contains(out, "err=boom") {
		t.Errorf("expected err=boom in %q", out)
	}
	if strings.Contains(out, "error=") {
		t.Errorf("error key should be renamed in %q", out)
	}
	if !strings.Contains(out, "index=2") {
		t.Errorf("expected index=2 in %q", out)
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, slog.LevelWarn)
	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("records below Warn were written: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("Warn record missing: %q", out)
	}
}

func TestNewNop(t *testing.T) {
	t.Parallel()

	// Must not panic and must accept every level.
	logger := NewNop()
	logger.Error("discarded", "err", errors.New("x"))
}

func TestLevelFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		quiet, verbose bool
		want           slog.Level
	}{
		{name: "default", want: slog.LevelWarn},
		{name: "verbose", verbose: true, want: slog.LevelDebug},
		{name: "quiet", quiet: true, want: slog.LevelError},
		{name: "quiet wins", quiet: true, verbose: true, want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := LevelFor(tt.quiet, tt.verbose); got != tt.want {
				t.Errorf("LevelFor(%v, %v) = %v, want %v", tt.quiet, tt.verbose, got, tt.want)
			}
		})
	}
}
