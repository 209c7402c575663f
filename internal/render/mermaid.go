// Package render runs external diagram renderers.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/alnah/go-mmd2pdf/internal/process"
)

// Sentinel errors for diagram rendering.
var (
	ErrRendererNotFound = errors.New("diagram renderer not found")
	ErrRenderFailed     = errors.New("diagram renderer failed")
	ErrRenderTimeout    = errors.New("diagram render timed out")
	ErrEmptyOutput      = errors.New("diagram renderer produced no output")
)

// Defaults for the Mermaid CLI.
const (
	DefaultCommand    = "mmdc"
	DefaultBackground = "transparent"
	DefaultTimeout    = 30 * time.Second
)

const (
	// waitDelay bounds how long Wait blocks on output pipes after a kill.
	waitDelay = 2 * time.Second

	// maxStderrLen caps renderer output quoted in errors.
	maxStderrLen = 512
)

// MermaidCLI renders diagram files with the Mermaid command line tool.
// A zero MermaidCLI is not usable; build one with NewMermaidCLI.
type MermaidCLI struct {
	command             string
	theme               string
	background          string
	configFile          string
	puppeteerConfigFile string
	timeout             time.Duration
}

// Option configures a MermaidCLI.
type Option func(*MermaidCLI)

// WithCommand sets the renderer binary name or path.
func WithCommand(command string) Option {
	return func(m *MermaidCLI) {
		if command != "" {
			m.command = command
		}
	}
}

// WithTheme sets the Mermaid theme (default, dark, forest, neutral).
func WithTheme(theme string) Option {
	return func(m *MermaidCLI) { m.theme = theme }
}

// WithBackground sets the diagram background color.
func WithBackground(background string) Option {
	return func(m *MermaidCLI) {
		if background != "" {
			m.background = background
		}
	}
}

// WithConfigFile passes a Mermaid JSON configuration file.
func WithConfigFile(path string) Option {
	return func(m *MermaidCLI) { m.configFile = path }
}

// WithPuppeteerConfigFile passes a Puppeteer JSON configuration file,
// typically to disable the browser sandbox in containers.
func WithPuppeteerConfigFile(path string) Option {
	return func(m *MermaidCLI) { m.puppeteerConfigFile = path }
}

// WithTimeout bounds each invocation. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(m *MermaidCLI) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// NewMermaidCLI creates a renderer with the given options.
func NewMermaidCLI(opts ...Option) *MermaidCLI {
	m := &MermaidCLI{
		command:    DefaultCommand,
		background: DefaultBackground,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Command returns the configured renderer binary.
func (m *MermaidCLI) Command() string {
	return m.command
}

// Args returns the command line arguments for one render.
func (m *MermaidCLI) Args(sourcePath, outputPath string) []string {
	args := []string{"-i", sourcePath, "-o", outputPath, "-b", m.background}
	if m.theme != "" {
		args = append(args, "-t", m.theme)
	}
	if m.configFile != "" {
		args = append(args, "-c", m.configFile)
	}
	if m.puppeteerConfigFile != "" {
		args = append(args, "-p", m.puppeteerConfigFile)
	}
	return args
}

// Render converts the diagram at sourcePath to an SVG at outputPath.
// The renderer runs in its own process group, which is killed on timeout or
// cancellation. A run that exits cleanly without writing a non-empty file
// is a failure.
func (m *MermaidCLI) Render(ctx context.Context, sourcePath, outputPath string) error {
	path, err := exec.LookPath(m.command)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrRendererNotFound, m.command)
	}

	_ = os.Remove(outputPath)

	runCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, path, m.Args(sourcePath, outputPath)...) // #nosec G204 -- binary chosen by the user
	process.ConfigureGroup(cmd)
	cmd.WaitDelay = waitDelay

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %v", ErrRenderTimeout, m.timeout)
		}
		return fmt.Errorf("%w: %v%s", ErrRenderFailed, err, formatOutput(output.String()))
	}

	info, err := os.Stat(outputPath)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyOutput, outputPath)
	}
	return nil
}

// Version runs the renderer with --version and returns its first line.
func (m *MermaidCLI) Version(ctx context.Context) (string, error) {
	path, err := exec.LookPath(m.command)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrRendererNotFound, m.command)
	}

	runCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, path, "--version") // #nosec G204 -- binary chosen by the user
	process.ConfigureGroup(cmd)
	cmd.WaitDelay = waitDelay

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	version, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(version), nil
}

// formatOutput trims renderer output for inclusion in an error message.
func formatOutput(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(s) > maxStderrLen {
		s = s[:maxStderrLen] + "..."
	}
	return ": " + s
}
