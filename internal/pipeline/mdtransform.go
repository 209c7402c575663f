package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// Highlight placeholders use Unicode Private Use Area characters.
// They never collide with document text and pass through Goldmark unchanged
// (no WithUnsafe needed). ConvertMarkPlaceholders turns them into <mark>
// tags once the HTML exists.
const (
	MarkStartPlaceholder = "\uE000" // U+E000: Private Use Area start
	MarkEndPlaceholder   = "\uE001" // U+E001: Private Use Area end
)

// Precompiled regex patterns.
var (
	// CRLF or lone CR line endings
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Three or more newlines in a row
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)

	// Highlight syntax ==text==
	highlightPattern = regexp.MustCompile(`==(.*?)==`)
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// CommonMarkPreprocessor normalizes Markdown before diagram extraction.
// Diagram offsets always refer to its output.
type CommonMarkPreprocessor struct{}

// PreprocessMarkdown normalizes line endings, then rewrites ==highlight==
// and compresses blank lines outside fenced code blocks. Fence contents are
// left alone: Mermaid uses == in link syntax (A == label ==> B).
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	// Cancelled runs get the input back untouched
	if ctx.Err() != nil {
		return content
	}

	content = normalizeLineEndings(content)
	return mapOutsideFences(content, func(s string) string {
		return compressBlankLines(convertHighlights(s))
	})
}

// mapOutsideFences applies fn to every stretch of text that is not part of
// a fenced code block.
func mapOutsideFences(content string, fn func(string) string) string {
	spans := scanFences(content)
	if len(spans) == 0 {
		return fn(content)
	}

	var b strings.Builder
	b.Grow(len(content))
	cursor := 0
	for _, f := range spans {
		b.WriteString(fn(content[cursor:f.start]))
		// Fence copied verbatim, markers included
		b.WriteString(content[f.start:f.end])
		cursor = f.end
	}
	b.WriteString(fn(content[cursor:]))
	return b.String()
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines limits consecutive blank lines to 2 maximum.
func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// convertHighlights transforms ==text== to placeholder markers.
func convertHighlights(content string) string {
	return highlightPattern.ReplaceAllString(content, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
}

// ConvertMarkPlaceholders turns highlight placeholders into <mark> tags.
// Called after Goldmark renders, so the converter stays in safe mode while
// highlights still come out as inline HTML.
func ConvertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}
