package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	mmd2pdf "github.com/alnah/go-mmd2pdf"
	"github.com/alnah/go-mmd2pdf/internal/config"
	"github.com/alnah/go-mmd2pdf/internal/dateutil"
	"github.com/alnah/go-mmd2pdf/internal/fileutil"
	"github.com/alnah/go-mmd2pdf/internal/hints"
	"github.com/alnah/go-mmd2pdf/internal/logging"
	"github.com/alnah/go-mmd2pdf/internal/pipeline"
	"github.com/alnah/go-mmd2pdf/internal/render"
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("invalid usage")

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Converter is the interface for the conversion library.
type Converter interface {
	Convert(ctx context.Context, input mmd2pdf.Input) (*mmd2pdf.ConvertResult, error)
	Close() error
}

// Compile-time interface implementation check.
var _ Converter = (*mmd2pdf.Converter)(nil)

// job describes one input file and where its outputs go.
type job struct {
	inputPath  string
	outputPath string // PDF destination, empty with --html-only
	htmlPath   string // HTML destination, empty unless requested
	page       *mmd2pdf.PageSettings
	footer     *mmd2pdf.Footer
	command    string // Renderer binary, for hints
	quiet      bool
	verbose    bool
}

// runConvertCmd parses flags, resolves configuration and converts one file,
// once or on every change with --watch.
func runConvertCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	warnUnknownEnvVars(env.Stderr)

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}

	// Merge CLI flags into config (CLI wins)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	j, err := newJob(positional, flags, cfg, env.Now)
	if err != nil {
		return err
	}

	logger := logging.New(env.Stderr, logging.LevelFor(flags.common.quiet, flags.common.verbose))
	conv, err := env.NewConverter(converterOptions(cfg, flags.assets, logger)...)
	if err != nil {
		return err
	}
	defer func() {
		if err := conv.Close(); err != nil {
			logger.Warn("closing converter", "err", err)
		}
	}()

	if flags.outputMode.watch {
		return watchAndConvert(ctx, conv, j, env)
	}
	return convertFile(ctx, conv, j, env)
}

// loadConfig builds the effective configuration before CLI flags:
// the named config file (flag, then MMD2PDF_CONFIG) or env.Config,
// overlaid with MMD2PDF_* variables.
func loadConfig(name string, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig()
	if name == "" {
		name = envCfg.ConfigPath
	}

	var cfg *config.Config
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			hint := ""
			if errors.Is(err, config.ErrConfigNotFound) {
				hint = hints.ForConfigNotFound(config.SearchPaths(name))
			}
			return nil, fmt.Errorf("loading config: %w%s", err, hint)
		}
		cfg = loaded
	} else {
		base := config.DefaultConfig()
		if env.Config != nil {
			*base = *env.Config
		}
		cfg = base
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	// Renderer flags
	if flags.renderer.command != "" {
		cfg.Renderer.Command = flags.renderer.command
	}
	if flags.renderer.theme != "" {
		cfg.Renderer.Theme = flags.renderer.theme
	}
	if flags.renderer.background != "" {
		cfg.Renderer.Background = flags.renderer.background
	}
	if flags.renderer.mermaidConfig != "" {
		cfg.Renderer.ConfigFile = flags.renderer.mermaidConfig
	}
	if flags.renderer.puppeteerConfig != "" {
		cfg.Renderer.PuppeteerConfigFile = flags.renderer.puppeteerConfig
	}
	if flags.renderer.timeout != "" {
		cfg.Renderer.Timeout = flags.renderer.timeout
	}
	if flags.workers != 0 {
		cfg.Renderer.Workers = flags.workers
	}
	if len(flags.renderer.languages) > 0 {
		cfg.Renderer.Languages = mergeLanguages(cfg.Renderer.Languages, flags.renderer.languages)
	}
	if flags.timeout != "" {
		cfg.Timeout = flags.timeout
	}

	// Page flags
	if flags.page.size != "" {
		cfg.Page.Size = flags.page.size
	}
	if flags.page.orientation != "" {
		cfg.Page.Orientation = flags.page.orientation
	}
	if flags.page.margin != 0 {
		cfg.Page.Margin = flags.page.margin
	}

	// Footer flags; any footer content enables the footer
	if flags.footer.position != "" {
		cfg.Footer.Position = flags.footer.position
	}
	if flags.footer.text != "" {
		cfg.Footer.Text = flags.footer.text
		cfg.Footer.Enabled = true
	}
	if flags.footer.date != "" {
		cfg.Footer.Date = flags.footer.date
		cfg.Footer.Enabled = true
	}
	if flags.footer.pageNumber {
		cfg.Footer.ShowPageNumber = true
		cfg.Footer.Enabled = true
	}

	// Style and output flags
	if flags.assets.style != "" {
		cfg.Style = flags.assets.style
	}
	if flags.outputMode.html {
		cfg.Output.HTML = true
	}

	// Disable flags
	if flags.footer.disabled {
		cfg.Footer.Enabled = false
	}
}

// mergeLanguages adds extra fence languages to the configured ones,
// which default to mermaid. Duplicates are dropped ignoring case, as fence
// languages match case-insensitively.
func mergeLanguages(configured, extra []string) []string {
	merged := slices.Clone(configured)
	if len(merged) == 0 {
		merged = []string{pipeline.DefaultLanguage}
	}
	for _, lang := range extra {
		lang = strings.TrimSpace(lang)
		sameLang := func(l string) bool { return strings.EqualFold(l, lang) }
		if lang != "" && !slices.ContainsFunc(merged, sameLang) {
			merged = append(merged, lang)
		}
	}
	return merged
}

// newJob resolves input, output paths and page layout for one conversion.
func newJob(args []string, flags *convertFlags, cfg *config.Config, now func() time.Time) (*job, error) {
	if len(args) == 0 {
		return nil, mmd2pdf.ErrNoInput
	}
	if len(args) > 1 {
		return nil, fmt.Errorf("%w: expected one input file, got %d", ErrUsage, len(args))
	}

	page, err := buildPageSettings(cfg)
	if err != nil {
		return nil, err
	}
	footer, err := buildFooter(cfg, now)
	if err != nil {
		return nil, err
	}

	j := &job{
		inputPath: args[0],
		page:      page,
		footer:    footer,
		command:   cfg.Renderer.Command,
		quiet:     flags.common.quiet,
		verbose:   flags.common.verbose,
	}

	pdfPath := resolveOutputPath(args[0], flags.output, cfg.Output.DefaultDir)
	switch {
	case flags.outputMode.htmlOnly:
		j.htmlPath = fileutil.ReplaceExtension(pdfPath, "html")
	case cfg.Output.HTML:
		j.outputPath = pdfPath
		j.htmlPath = fileutil.ReplaceExtension(pdfPath, "html")
	default:
		j.outputPath = pdfPath
	}

	return j, nil
}

// resolveOutputPath determines the PDF path.
// Priority: -o file > -o directory > config output.defaultDir > next to input.
func resolveOutputPath(inputPath, output, defaultDir string) string {
	name := fileutil.ReplaceExtension(filepath.Base(inputPath), "pdf")

	switch {
	case output != "" && isDirectoryTarget(output):
		return filepath.Join(output, name)
	case output != "":
		return output
	case defaultDir != "":
		return filepath.Join(defaultDir, name)
	default:
		return fileutil.ReplaceExtension(inputPath, "pdf")
	}
}

// isDirectoryTarget reports whether -o names a directory: an existing one,
// or any path ending with a separator.
func isDirectoryTarget(path string) bool {
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// buildPageSettings creates mmd2pdf.PageSettings from config.
// Flags are merged into config by mergeFlags before this is called.
// Returns nil when nothing is set, which means A4 portrait.
func buildPageSettings(cfg *config.Config) (*mmd2pdf.PageSettings, error) {
	hasConfig := cfg.Page.Size != "" || cfg.Page.Orientation != "" || cfg.Page.Margin > 0
	if !hasConfig {
		return nil, nil
	}

	ps := mmd2pdf.DefaultPageSettings()
	if cfg.Page.Size != "" {
		ps.Size = cfg.Page.Size
	}
	if cfg.Page.Orientation != "" {
		ps.Orientation = cfg.Page.Orientation
	}
	if cfg.Page.Margin != 0 {
		ps.Margin = cfg.Page.Margin
	}

	if err := ps.Validate(); err != nil {
		return nil, err
	}
	return ps, nil
}

// buildFooter creates mmd2pdf.Footer from config, resolving "auto" dates
// against now. Returns nil when the footer is disabled.
func buildFooter(cfg *config.Config, now func() time.Time) (*mmd2pdf.Footer, error) {
	if !cfg.Footer.Enabled {
		return nil, nil
	}

	date, err := dateutil.Resolve(cfg.Footer.Date, now())
	if err != nil {
		return nil, fmt.Errorf("%w: footer.date: %v", config.ErrInvalidValue, err)
	}

	f := &mmd2pdf.Footer{
		Position:       cfg.Footer.Position,
		ShowPageNumber: cfg.Footer.ShowPageNumber,
		Date:           date,
		Text:           cfg.Footer.Text,
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// converterOptions translates the merged config into library options.
func converterOptions(cfg *config.Config, assetFlags assetFlags, logger *slog.Logger) []mmd2pdf.Option {
	renderTimeout := cfg.RenderTimeout()
	renderer := render.NewMermaidCLI(
		render.WithCommand(cfg.Renderer.Command),
		render.WithTheme(cfg.Renderer.Theme),
		render.WithBackground(cfg.Renderer.Background),
		render.WithConfigFile(cfg.Renderer.ConfigFile),
		render.WithPuppeteerConfigFile(cfg.Renderer.PuppeteerConfigFile),
		render.WithTimeout(renderTimeout),
	)

	opts := []mmd2pdf.Option{
		mmd2pdf.WithLogger(logger),
		mmd2pdf.WithRenderer(renderer),
		mmd2pdf.WithRenderWorkers(mmd2pdf.ResolveRenderWorkers(cfg.Renderer.Workers)),
	}
	if renderTimeout > 0 {
		opts = append(opts, mmd2pdf.WithRenderTimeout(renderTimeout))
	}
	if timeout := cfg.ExportTimeout(); timeout > 0 {
		opts = append(opts, mmd2pdf.WithTimeout(timeout))
	}
	if len(cfg.Renderer.Languages) > 0 {
		opts = append(opts, mmd2pdf.WithLanguages(cfg.Renderer.Languages...))
	}
	if assetFlags.assetPath != "" {
		opts = append(opts, mmd2pdf.WithAssetPath(assetFlags.assetPath))
	}
	switch {
	case assetFlags.noStyle:
		opts = append(opts, mmd2pdf.WithoutStyle())
	case cfg.Style != "":
		opts = append(opts, mmd2pdf.WithStyle(cfg.Style))
	}
	if cfg.WorkDir != "" {
		opts = append(opts, mmd2pdf.WithWorkDir(cfg.WorkDir))
	}
	return opts
}

// convertFile converts j once and writes its outputs.
func convertFile(ctx context.Context, conv Converter, j *job, env *Environment) error {
	start := env.Now()

	data, err := os.ReadFile(j.inputPath) // #nosec G304 -- user-provided path
	if err != nil {
		return fmt.Errorf("%w: %v", mmd2pdf.ErrReadMarkdown, err)
	}
	markdown := string(data)

	sourceDir, err := filepath.Abs(filepath.Dir(j.inputPath))
	if err != nil {
		sourceDir = filepath.Dir(j.inputPath)
	}

	result, err := conv.Convert(ctx, mmd2pdf.Input{
		Markdown:  markdown,
		SourceDir: sourceDir,
		Title:     documentTitle(markdown, j.inputPath),
		Page:      j.page,
		Footer:    j.footer,
		HTMLOnly:  j.outputPath == "",
	})
	if err != nil {
		return fmt.Errorf("converting %s: %w", j.inputPath, err)
	}

	if !j.quiet {
		printDiagramFailures(env.Stderr, j.inputPath, result.Failed(), j.command)
	}

	// PDF first: a failed PDF write leaves no HTML behind.
	var written []string
	if j.outputPath != "" {
		if err := writeOutput(j.outputPath, result.PDF); err != nil {
			return err
		}
		written = append(written, j.outputPath)
	}
	if j.htmlPath != "" {
		if err := writeOutput(j.htmlPath, result.HTML); err != nil {
			return err
		}
		written = append(written, j.htmlPath)
	}

	if !j.quiet {
		elapsed := env.Now().Sub(start)
		for _, path := range written {
			if j.verbose {
				fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", j.inputPath, path, elapsed.Round(time.Millisecond))
			} else {
				fmt.Fprintf(env.Stdout, "Created %s\n", path)
			}
		}
	}
	return nil
}

// writeOutput writes data to path atomically, creating parent directories.
// On failure nothing is left at path.
func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("%w: %v", mmd2pdf.ErrWritePDF, err)
	}
	if err := fileutil.WriteFileAtomic(path, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", mmd2pdf.ErrWritePDF, err)
	}
	return nil
}

// printDiagramFailures lists diagrams that were left as code blocks.
func printDiagramFailures(w io.Writer, inputPath string, failed []mmd2pdf.DiagramReport, command string) {
	if len(failed) == 0 {
		return
	}

	notFound, timedOut := false, false
	for _, d := range failed {
		fmt.Fprintf(w, "WARNING %s:%d: diagram kept as code block: %v\n", inputPath, d.Line, d.Err)
		switch {
		case errors.Is(d.Err, render.ErrRendererNotFound):
			notFound = true
		case errors.Is(d.Err, render.ErrRenderTimeout):
			timedOut = true
		}
	}

	hint := hints.ForDiagramFailure()
	switch {
	case notFound:
		hint = hints.ForRendererNotFound(command)
	case timedOut:
		hint = hints.ForTimeout()
	}
	fmt.Fprintf(w, "%d diagram(s) not rendered%s\n", len(failed), hint)
}

// firstHeadingPattern matches the first # heading in markdown content.
var firstHeadingPattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// documentTitle returns the first # heading, or the file name without
// its extension.
func documentTitle(markdown, path string) string {
	if matches := firstHeadingPattern.FindStringSubmatch(markdown); len(matches) >= 2 {
		return strings.TrimSpace(matches[1])
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
