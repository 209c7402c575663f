package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	mmd2pdf "github.com/alnah/go-mmd2pdf"
	"github.com/alnah/go-mmd2pdf/internal/assets"
	"github.com/alnah/go-mmd2pdf/internal/config"
	"github.com/alnah/go-mmd2pdf/internal/hints"
)

// Exit codes for mmd2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, mmd2pdf.ErrBrowserConnect) ||
		errors.Is(err, mmd2pdf.ErrPageCreate) ||
		errors.Is(err, mmd2pdf.ErrPageLoad) ||
		errors.Is(err, mmd2pdf.ErrPDFGeneration) {
		return ExitBrowser
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, mmd2pdf.ErrEmptyMarkdown) ||
		errors.Is(err, mmd2pdf.ErrInvalidPageSize) ||
		errors.Is(err, mmd2pdf.ErrInvalidOrientation) ||
		errors.Is(err, mmd2pdf.ErrInvalidMargin) ||
		errors.Is(err, mmd2pdf.ErrInvalidFooterPosition) ||
		errors.Is(err, mmd2pdf.ErrStyleNotFound) ||
		errors.Is(err, mmd2pdf.ErrInvalidAssetPath) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, mmd2pdf.ErrReadMarkdown) ||
		errors.Is(err, mmd2pdf.ErrWritePDF) ||
		errors.Is(err, mmd2pdf.ErrWorkspace) ||
		errors.Is(err, mmd2pdf.ErrNoInput) {
		return ExitIO
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "" when none applies.
// Config lookup hints are attached where the config is loaded.
func hintFor(err error) string {
	switch {
	case errors.Is(err, mmd2pdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, mmd2pdf.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.ListStyles())
	case errors.Is(err, mmd2pdf.ErrWritePDF):
		return hints.ForOutputDirectory()
	}
	return ""
}

// printError writes err and its hint to w.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v%s\n", err, hintFor(err))
}
