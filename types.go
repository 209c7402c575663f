package mmd2pdf

import (
	"fmt"
	"strings"
)

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// Footer position constants.
const (
	FooterLeft   = "left"
	FooterCenter = "center"
	FooterRight  = "right"
)

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeA4,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
// Does not mutate - uses case-insensitive comparison.
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if !isValidPageSize(p.Size) {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}

	if !isValidOrientation(p.Orientation) {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	return nil
}

// isValidPageSize checks if size is a known page size (case-insensitive).
func isValidPageSize(size string) bool {
	_, ok := paperSizes[strings.ToLower(size)]
	return ok
}

// isValidOrientation checks if orientation is valid (case-insensitive).
func isValidOrientation(orientation string) bool {
	switch strings.ToLower(orientation) {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// Footer configures the PDF footer.
type Footer struct {
	Position       string // "left", "center", "right" (default: "right")
	ShowPageNumber bool
	Date           string // already resolved, printed verbatim
	Text           string
}

// Validate checks that footer settings are valid.
// Returns nil if f is nil (nil means no footer).
func (f *Footer) Validate() error {
	if f == nil {
		return nil
	}
	switch strings.ToLower(f.Position) {
	case "", FooterLeft, FooterCenter, FooterRight:
		return nil
	default:
		return fmt.Errorf("%w: %q (must be left, center, or right)", ErrInvalidFooterPosition, f.Position)
	}
}

// Input contains conversion parameters.
type Input struct {
	Markdown  string        // Markdown content (required)
	SourceDir string        // Directory of the source file, for relative images (optional)
	Title     string        // Document title (optional)
	CSS       string        // Extra CSS appended after the style (optional)
	Page      *PageSettings // Page settings (optional, nil = defaults)
	Footer    *Footer       // Footer config (optional)
	HTMLOnly  bool          // Skip PDF export
}

// DiagramReport is the outcome of rendering one diagram block.
// Err is nil when the diagram was rendered and embedded.
type DiagramReport struct {
	Index int
	Line  int
	Err   error
}

// ConvertResult holds the output of a conversion.
type ConvertResult struct {
	HTML     []byte          // Complete HTML document sent to the browser
	PDF      []byte          // Nil when Input.HTMLOnly is set
	Diagrams []DiagramReport // One entry per diagram block, in document order
}

// Failed returns the reports of diagrams that were left as code blocks.
func (r *ConvertResult) Failed() []DiagramReport {
	if r == nil {
		return nil
	}
	var failed []DiagramReport
	for _, d := range r.Diagrams {
		if d.Err != nil {
			failed = append(failed, d)
		}
	}
	return failed
}
