// Package pipeline implements the Markdown-to-HTML half of the conversion.
//
// The stages are:
//   - Markdown preprocessing (line normalization, highlight syntax)
//   - Diagram block extraction from fenced code blocks
//   - Document assembly: text runs through Goldmark, rendered diagrams
//     spliced in as inline SVG at their original positions
//   - Local image inlining and CSS injection
//
// Diagram rendering and PDF generation are handled by the root mmd2pdf
// package. This package never touches external processes: it only works
// on strings, so every stage can be tested with plain inputs.
package pipeline
