// Package config loads and validates mmd2pdf YAML configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mmd2pdf/internal/dateutil"
	"github.com/alnah/go-mmd2pdf/internal/fileutil"
	"github.com/alnah/go-mmd2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength        = 4096 // Files referenced from config
	MaxCommandLength     = 1024 // Renderer binary name or path
	MaxThemeLength       = 20   // "default", "forest", "dark", "neutral"
	MaxColorLength       = 30   // "transparent", "#ffffff", "white"
	MaxTextLength        = 500  // Footer free-form text
	MaxPageSizeLength    = 10   // "letter", "a4", "legal"
	MaxOrientationLength = 10   // "portrait", "landscape"
	MaxDurationLength    = 20   // "30s", "2m"
	MaxLanguageLength    = 32   // Info-string tag
	MaxLanguages         = 16
	MaxWorkers           = 64
)

// appName names the per-user config directory.
const appName = "mmd2pdf"

// Config holds all configuration for a conversion.
// Zero values mean "use the default".
type Config struct {
	Renderer RendererConfig `yaml:"renderer"`
	Page     PageConfig     `yaml:"page"`
	Footer   FooterConfig   `yaml:"footer"`
	Output   OutputConfig   `yaml:"output"`
	Style    string         `yaml:"style"`   // Embedded style name or CSS file path
	Timeout  string         `yaml:"timeout"` // PDF export timeout, e.g. "30s"
	WorkDir  string         `yaml:"workDir"` // Parent of per-run temp directories
}

// RendererConfig defines how diagram blocks are rendered.
type RendererConfig struct {
	Command             string   `yaml:"command"`             // Default: mmdc
	Theme               string   `yaml:"theme"`               // default, forest, dark, neutral
	Background          string   `yaml:"background"`          // Default: transparent
	ConfigFile          string   `yaml:"configFile"`          // Mermaid JSON config
	PuppeteerConfigFile string   `yaml:"puppeteerConfigFile"` // Puppeteer JSON config
	Timeout             string   `yaml:"timeout"`             // Per diagram, e.g. "30s"
	Workers             int      `yaml:"workers"`             // 0 = auto
	Languages           []string `yaml:"languages"`           // Default: [mermaid]
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "letter", "a4", "legal" (default: "a4")
	Orientation string  `yaml:"orientation"` // "portrait", "landscape" (default: "portrait")
	Margin      float64 `yaml:"margin"`      // inches (default: 0.5)
}

// FooterConfig defines page footer options.
type FooterConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Position       string `yaml:"position"` // "left", "center", "right" (default: "right")
	ShowPageNumber bool   `yaml:"showPageNumber"`
	Date           string `yaml:"date"` // Literal text, "auto" or "auto:FORMAT"
	Text           string `yaml:"text"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = next to the input
	HTML       bool   `yaml:"html"`       // Also write the intermediate HTML
}

// DefaultConfig returns a configuration with every field at its default.
func DefaultConfig() *Config {
	return &Config{}
}

// Validate checks field lengths, enums and ranges.
// Called automatically by LoadConfig, but available for callers
// who construct Config manually.
func (c *Config) Validate() error {
	checks := []struct {
		field string
		value string
		max   int
	}{
		{"renderer.command", c.Renderer.Command, MaxCommandLength},
		{"renderer.theme", c.Renderer.Theme, MaxThemeLength},
		{"renderer.background", c.Renderer.Background, MaxColorLength},
		{"renderer.configFile", c.Renderer.ConfigFile, MaxPathLength},
		{"renderer.puppeteerConfigFile", c.Renderer.PuppeteerConfigFile, MaxPathLength},
		{"renderer.timeout", c.Renderer.Timeout, MaxDurationLength},
		{"page.size", c.Page.Size, MaxPageSizeLength},
		{"page.orientation", c.Page.Orientation, MaxOrientationLength},
		{"footer.date", c.Footer.Date, MaxTextLength},
		{"footer.text", c.Footer.Text, MaxTextLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"style", c.Style, MaxPathLength},
		{"timeout", c.Timeout, MaxDurationLength},
		{"workDir", c.WorkDir, MaxPathLength},
	}
	for _, chk := range checks {
		if err := validateFieldLength(chk.field, chk.value, chk.max); err != nil {
			return err
		}
	}

	if err := validateTheme(c.Renderer.Theme); err != nil {
		return err
	}
	if _, err := ParseDuration("renderer.timeout", c.Renderer.Timeout); err != nil {
		return err
	}
	if _, err := ParseDuration("timeout", c.Timeout); err != nil {
		return err
	}
	if c.Renderer.Workers < 0 || c.Renderer.Workers > MaxWorkers {
		return fmt.Errorf("%w: renderer.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Renderer.Workers)
	}
	if err := validateLanguages(c.Renderer.Languages); err != nil {
		return err
	}

	if _, err := dateutil.Resolve(c.Footer.Date, time.Now()); err != nil {
		return fmt.Errorf("%w: footer.date: %v", ErrInvalidValue, err)
	}

	if c.Footer.Position != "" {
		switch strings.ToLower(c.Footer.Position) {
		case "left", "center", "right":
		default:
			return fmt.Errorf("%w: footer.position %q (must be left, center, or right)", ErrInvalidValue, c.Footer.Position)
		}
	}

	return nil
}

// RenderTimeout returns the parsed per-diagram timeout, or 0 when unset.
func (c *Config) RenderTimeout() time.Duration {
	d, _ := ParseDuration("renderer.timeout", c.Renderer.Timeout)
	return d
}

// ExportTimeout returns the parsed export timeout, or 0 when unset.
func (c *Config) ExportTimeout() time.Duration {
	d, _ := ParseDuration("timeout", c.Timeout)
	return d
}

// ParseDuration parses a positive duration. An empty value yields 0.
func ParseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a duration", ErrInvalidValue, field, value)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidValue, field, value)
	}
	return d, nil
}

func validateTheme(theme string) error {
	switch strings.ToLower(theme) {
	case "", "default", "forest", "dark", "neutral", "base":
		return nil
	}
	return fmt.Errorf("%w: renderer.theme %q (must be default, forest, dark, neutral, or base)", ErrInvalidValue, theme)
}

func validateLanguages(languages []string) error {
	if len(languages) > MaxLanguages {
		return fmt.Errorf("%w: renderer.languages has %d entries (max %d)", ErrInvalidValue, len(languages), MaxLanguages)
	}
	for i, lang := range languages {
		field := fmt.Sprintf("renderer.languages[%d]", i)
		if err := validateFieldLength(field, lang, MaxLanguageLength); err != nil {
			return err
		}
		if lang == "" || strings.ContainsAny(lang, " \t`{") {
			return fmt.Errorf("%w: %s %q is not a fence language tag", ErrInvalidValue, field, lang)
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := yamlutil.ReadFileStrict(configPath, &cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SearchPaths lists the files tried for a config name, in lookup order:
// name.yaml and name.yml in the current directory, then in
// <user config dir>/mmd2pdf/.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, appName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file from SearchPaths.
func resolveConfigPath(name string) (string, error) {
	triedPaths := SearchPaths(name)
	for _, p := range triedPaths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
