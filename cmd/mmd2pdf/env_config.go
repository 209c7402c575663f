package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-mmd2pdf/internal/config"
)

// envPrefix marks variables read by mmd2pdf.
const envPrefix = "MMD2PDF_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
// Durations are kept as strings and checked by config.Validate.
type envConfig struct {
	ConfigPath    string // MMD2PDF_CONFIG: config file name or path
	Style         string // MMD2PDF_STYLE: CSS style name or path
	Timeout       string // MMD2PDF_TIMEOUT: PDF export timeout
	RenderTimeout string // MMD2PDF_RENDER_TIMEOUT: per-diagram timeout
	Command       string // MMD2PDF_MMDC: renderer binary
	Theme         string // MMD2PDF_THEME: Mermaid theme
	PageSize      string // MMD2PDF_PAGE_SIZE: a4, letter, legal
	WorkDir       string // MMD2PDF_WORK_DIR: parent of run workspaces
	Workers       int    // MMD2PDF_WORKERS: diagrams rendered in parallel
}

// knownEnvVars lists valid MMD2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MMD2PDF_CONFIG":         true,
	"MMD2PDF_STYLE":          true,
	"MMD2PDF_TIMEOUT":        true,
	"MMD2PDF_RENDER_TIMEOUT": true,
	"MMD2PDF_MMDC":           true,
	"MMD2PDF_THEME":          true,
	"MMD2PDF_PAGE_SIZE":      true,
	"MMD2PDF_WORK_DIR":       true,
	"MMD2PDF_WORKERS":        true,
	"MMD2PDF_CONTAINER":      true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:    os.Getenv("MMD2PDF_CONFIG"),
		Style:         os.Getenv("MMD2PDF_STYLE"),
		Timeout:       os.Getenv("MMD2PDF_TIMEOUT"),
		RenderTimeout: os.Getenv("MMD2PDF_RENDER_TIMEOUT"),
		Command:       os.Getenv("MMD2PDF_MMDC"),
		Theme:         os.Getenv("MMD2PDF_THEME"),
		PageSize:      os.Getenv("MMD2PDF_PAGE_SIZE"),
		WorkDir:       os.Getenv("MMD2PDF_WORK_DIR"),
	}

	// Non-numeric or negative values are ignored
	if workers := os.Getenv("MMD2PDF_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MMD2PDF_* variables.
// Helps catch typos like MMD2PDF_TIMOUT.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overlays set environment variables on the loaded config.
// Precedence is CLI flags > env vars > config file > defaults; flags are
// applied afterwards by mergeFlags.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Style != "" {
		cfg.Style = env.Style
	}
	if env.Timeout != "" {
		cfg.Timeout = env.Timeout
	}
	if env.RenderTimeout != "" {
		cfg.Renderer.Timeout = env.RenderTimeout
	}
	if env.Command != "" {
		cfg.Renderer.Command = env.Command
	}
	if env.Theme != "" {
		cfg.Renderer.Theme = env.Theme
	}
	if env.PageSize != "" {
		cfg.Page.Size = env.PageSize
	}
	if env.WorkDir != "" {
		cfg.WorkDir = env.WorkDir
	}
	if env.Workers > 0 {
		cfg.Renderer.Workers = env.Workers
	}
}
