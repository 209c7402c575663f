package main

// Notes:
// - run is tested for dispatch and exit codes; command behavior is covered
//   in the per-command test files.
// - setMaxProcs is not tested: it only forwards to automaxprocs.

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRun - Command dispatch
// ---------------------------------------------------------------------------

func TestRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{name: "no args prints usage", args: nil, wantCode: ExitUsage, wantStderr: "Usage: mmd2pdf"},
		{name: "version", args: []string{"version"}, wantCode: ExitSuccess, wantStdout: "mmd2pdf " + Version},
		{name: "version flag", args: []string{"--version"}, wantCode: ExitSuccess, wantStdout: "mmd2pdf "},
		{name: "help", args: []string{"help"}, wantCode: ExitSuccess, wantStdout: "Commands:"},
		{name: "help convert", args: []string{"help", "convert"}, wantCode: ExitSuccess, wantStdout: "--render-timeout"},
		{name: "help unknown", args: []string{"help", "publish"}, wantCode: ExitUsage, wantStderr: "unknown command: publish"},
		{name: "convert without input", args: []string{"convert"}, wantCode: ExitIO, wantStderr: "error: no input file"},
		{name: "bad flag", args: []string{"--bogus"}, wantCode: ExitUsage, wantStderr: "invalid usage"},
		{name: "completion bash", args: []string{"completion", "bash"}, wantCode: ExitSuccess, wantStdout: "complete -F _mmd2pdf_completions mmd2pdf"},
		{name: "completion unknown shell", args: []string{"completion", "tcsh"}, wantCode: ExitUsage, wantStderr: "unsupported shell"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(&fakeConverter{})
			code := run(context.Background(), tt.args, env)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want to contain %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestRun_ConvertIsDefault(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeMarkdown(t, dir, "doc.md", "text")

	for _, args := range [][]string{{input}, {"convert", input}} {
		conv := &fakeConverter{}
		env, _, stderr := testEnv(conv)

		if code := run(context.Background(), args, env); code != ExitSuccess {
			t.Fatalf("run(%v) = %d, stderr: %s", args, code, stderr.String())
		}
		if conv.calls() != 1 {
			t.Errorf("run(%v) converted %d times, want 1", args, conv.calls())
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "doc.pdf")); err != nil {
		t.Errorf("PDF not written: %v", err)
	}
}

func TestRun_StyleNotFoundHint(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeMarkdown(t, dir, "doc.md", "text")
	env, _, stderr := testEnv(nil)
	env.NewConverter = newConverter

	code := run(context.Background(), []string{input, "--style", "fancy"}, env)
	if code != ExitUsage {
		t.Errorf("exit code = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(stderr.String(), "hint: available:") {
		t.Errorf("stderr should list available styles: %q", stderr.String())
	}
}

func TestHasVerboseFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"doc.md"}, false},
		{[]string{"-v", "doc.md"}, true},
		{[]string{"convert", "doc.md", "--verbose"}, true},
		{[]string{"--", "-v"}, false},
	}

	for _, tt := range tests {
		if got := hasVerboseFlag(tt.args); got != tt.want {
			t.Errorf("hasVerboseFlag(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}
