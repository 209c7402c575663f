package mmd2pdf

import (
	"log/slog"
	"time"
)

// defaultTimeout bounds PDF export when no timeout is specified.
const defaultTimeout = 30 * time.Second

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout       time.Duration
	renderTimeout time.Duration
	renderWorkers int
	languages     []string
	styleInput    string // name, file path, or CSS content
	resolvedStyle string
	noStyle       bool
	assetPath     string
	workDir       string
}

// Option configures a Converter.
type Option func(*Converter)

// WithTimeout sets the PDF export timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("mmd2pdf: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithRenderer replaces the diagram renderer (default: the Mermaid CLI).
func WithRenderer(r DiagramRenderer) Option {
	return func(c *Converter) {
		c.renderer = r
	}
}

// WithRenderWorkers sets how many diagrams render concurrently.
// Zero or negative selects ResolveRenderWorkers(0).
func WithRenderWorkers(n int) Option {
	return func(c *Converter) {
		c.cfg.renderWorkers = n
	}
}

// WithRenderTimeout bounds each diagram render.
// Panics if d <= 0.
func WithRenderTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("mmd2pdf: WithRenderTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.renderTimeout = d
	}
}

// WithLanguages sets the fence info words treated as diagrams.
// The default is "mermaid".
func WithLanguages(languages ...string) Option {
	return func(c *Converter) {
		c.cfg.languages = append([]string(nil), languages...)
	}
}

// WithStyle sets the document style: an embedded style name ("technical"),
// a CSS file path, or literal CSS content.
func WithStyle(style string) Option {
	return func(c *Converter) {
		c.cfg.styleInput = style
	}
}

// WithoutStyle disables the base style. Input.CSS still applies.
func WithoutStyle() Option {
	return func(c *Converter) {
		c.cfg.noStyle = true
	}
}

// WithAssetPath adds a directory searched for styles/{name}.css before the
// embedded styles.
func WithAssetPath(path string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = path
	}
}

// WithWorkDir sets the parent directory of per-run workspaces
// (default: the OS temp directory).
func WithWorkDir(dir string) Option {
	return func(c *Converter) {
		c.cfg.workDir = dir
	}
}

// WithLogger sets the logger for per-diagram diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}
