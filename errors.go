package mmd2pdf

import "errors"

// Sentinel errors for library operations.
var (
	ErrNoInput       = errors.New("no input file")
	ErrReadMarkdown  = errors.New("failed to read markdown")
	ErrEmptyMarkdown = errors.New("markdown content cannot be empty")
	ErrWorkspace     = errors.New("failed to prepare work directory")
	ErrDiagramRender = errors.New("diagram rendering failed")
	ErrWritePDF      = errors.New("failed to write output")

	// Export errors.
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")

	// Footer validation errors.
	ErrInvalidFooterPosition = errors.New("invalid footer position")

	// Asset loading errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)
