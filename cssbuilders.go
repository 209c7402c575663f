package mmd2pdf

import (
	"fmt"
	"strings"

	"github.com/alnah/go-mmd2pdf/internal/pipeline"
)

// defaultFontFamily is the standard font stack for PDF footers and generated content.
const defaultFontFamily = "sans-serif"

// Orphan and widow line counts for paragraph-like elements.
const (
	defaultOrphans = 2
	defaultWidows  = 2
)

// buildPrintCSS generates the print rules applied before any style:
// headings stay with the following content and diagrams are never split
// across pages or wider than the page.
func buildPrintCSS() string {
	var buf strings.Builder

	buf.WriteString(`
/* Page breaks: prevent heading alone at page bottom */
h1, h2, h3, h4, h5, h6 {
  break-after: avoid;
  page-break-after: avoid;
  break-inside: avoid;
  page-break-inside: avoid;
}
`)

	fmt.Fprintf(&buf, `
/* Page breaks: orphan/widow control */
p, li, dd, dt, blockquote {
  orphans: %d;
  widows: %d;
}
`, defaultOrphans, defaultWidows)

	fmt.Fprintf(&buf, `
/* Diagrams */
.%[1]s {
  break-inside: avoid;
  page-break-inside: avoid;
}
.%[1]s svg {
  max-width: 100%%;
  height: auto;
}
`, pipeline.DiagramClass)

	return buf.String()
}
