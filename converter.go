package mmd2pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/alnah/go-mmd2pdf/internal/assets"
	"github.com/alnah/go-mmd2pdf/internal/fileutil"
	"github.com/alnah/go-mmd2pdf/internal/logging"
	"github.com/alnah/go-mmd2pdf/internal/pipeline"
	"github.com/alnah/go-mmd2pdf/internal/render"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.MarkupConverter      = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector          = (*pipeline.CSSInjection)(nil)
)

// Converter orchestrates the Markdown-with-diagrams to PDF pipeline.
// Create with NewConverter(), use Convert() for conversion, and Close() when done.
// Convert may be called concurrently; each call uses its own workspace.
type Converter struct {
	cfg           converterConfig
	logger        *slog.Logger
	assetLoader   assets.AssetLoader
	renderer      DiagramRenderer
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.MarkupConverter
	cssInjector   pipeline.CSSInjector
	pdfConverter  pdfConverter
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithRenderer, WithStyle).
// Returns error if the asset path or style cannot be loaded.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg:           converterConfig{timeout: defaultTimeout},
		logger:        logging.NewNop(),
		assetLoader:   assets.NewEmbeddedLoader(),
		preprocessor:  &pipeline.CommonMarkPreprocessor{},
		htmlConverter: pipeline.NewGoldmarkConverter(),
		cssInjector:   &pipeline.CSSInjection{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if len(c.cfg.languages) == 0 {
		c.cfg.languages = []string{pipeline.DefaultLanguage}
	}

	if c.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		c.assetLoader = resolver
	}

	if err := c.resolveStyle(); err != nil {
		return nil, err
	}

	if c.renderer == nil {
		var renderOpts []render.Option
		if c.cfg.renderTimeout > 0 {
			renderOpts = append(renderOpts, render.WithTimeout(c.cfg.renderTimeout))
		}
		c.renderer = render.NewMermaidCLI(renderOpts...)
	}

	// Create PDF converter if not injected (e.g., by tests)
	if c.pdfConverter == nil {
		c.pdfConverter = newRodConverter(c.cfg.timeout)
	}

	return c, nil
}

// Convert runs the full pipeline and returns the result containing HTML and PDF.
// The context is used for cancellation and timeout.
// Diagrams that fail to render stay in the document as code blocks and are
// reported in ConvertResult.Diagrams; they do not fail the conversion.
// The run workspace is removed before Convert returns, on every path.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := c.validateInput(input); err != nil {
		return nil, err
	}

	mdContent := c.preprocessor.PreprocessMarkdown(ctx, input.Markdown)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	blocks := pipeline.ExtractDiagrams(mdContent, c.cfg.languages...)
	c.logger.Debug("diagrams extracted", "count", len(blocks))

	ws, err := fileutil.NewWorkspace(c.cfg.workDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkspace, err)
	}
	defer func() {
		if cerr := ws.Close(); cerr != nil {
			c.logger.Warn("removing workspace", "dir", ws.Dir(), "error", cerr)
		}
	}()

	rendered, reports, err := c.renderDiagrams(ctx, ws, blocks)
	if err != nil {
		return nil, err
	}

	body, err := pipeline.Assemble(ctx, mdContent, rendered, c.htmlConverter)
	if err != nil {
		if errors.Is(err, pipeline.ErrAssembly) {
			return nil, fmt.Errorf("internal error: %w", err)
		}
		return nil, err
	}

	htmlContent := pipeline.WrapDocument(input.Title, body)

	htmlContent, err = pipeline.InlineLocalImages(htmlContent, input.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("inlining local images: %w", err)
	}

	// Print rules first, style next, caller CSS last so it can override.
	cssContent := buildPrintCSS() + c.cfg.resolvedStyle
	if input.CSS != "" {
		cssContent += "\n" + input.CSS
	}
	htmlContent = c.cssInjector.InjectCSS(ctx, htmlContent, cssContent)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	res := &ConvertResult{
		HTML:     []byte(htmlContent),
		Diagrams: reports,
	}

	if input.HTMLOnly {
		return res, nil
	}

	pdfBytes, err := c.pdfConverter.ToPDF(ctx, ws, htmlContent, &pdfOptions{
		Page:   input.Page,
		Footer: input.Footer,
	})
	if err != nil {
		return nil, fmt.Errorf("converting to PDF: %w", err)
	}

	res.PDF = pdfBytes
	return res, nil
}

// Close releases resources (headless Chrome browser).
func (c *Converter) Close() error {
	if c.pdfConverter != nil {
		return c.pdfConverter.Close()
	}
	return nil
}

// resolveStyle resolves the style input (name, path, or CSS content) to CSS content.
// Called during NewConverter() after options are applied and the asset loader is configured.
func (c *Converter) resolveStyle() error {
	if c.cfg.noStyle {
		return nil
	}

	input := c.cfg.styleInput
	if input == "" {
		input = assets.DefaultStyleName
	}

	// The document is printed offline.
	if fileutil.IsURL(input) {
		return fmt.Errorf("%w: %q (remote styles are not supported)", ErrStyleNotFound, input)
	}

	// File path? (contains / or \)
	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("loading style file %q: %w", input, err)
		}
		c.cfg.resolvedStyle = string(content)
		return nil
	}

	if fileutil.IsCSS(input) {
		c.cfg.resolvedStyle = input
		return nil
	}

	css, err := c.assetLoader.LoadStyle(input)
	if err != nil {
		if errors.Is(err, assets.ErrStyleNotFound) {
			return fmt.Errorf("%w: %q", ErrStyleNotFound, input)
		}
		return fmt.Errorf("loading style %q: %w", input, err)
	}
	c.cfg.resolvedStyle = css
	return nil
}

// validateInput checks that required fields are present and valid.
// CLI input is also validated earlier by config.Validate; library users
// building Input by hand are checked here.
func (c *Converter) validateInput(input Input) error {
	if input.Markdown == "" {
		return ErrEmptyMarkdown
	}
	if err := input.Page.Validate(); err != nil {
		return err
	}
	if err := input.Footer.Validate(); err != nil {
		return err
	}
	return nil
}
