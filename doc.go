// Package mmd2pdf converts Markdown documents with embedded Mermaid diagrams
// to PDF using the Mermaid CLI and headless Chrome.
//
// # Quick Start
//
// Create a converter, convert markdown, and close when done:
//
//	conv, err := mmd2pdf.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, mmd2pdf.Input{
//	    Markdown: "# Flow\n\n```mermaid\ngraph TD\nA-->B\n```\n",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("output.pdf", result.PDF, 0644)
//
// The result contains the PDF bytes (result.PDF), the intermediate HTML
// (result.HTML) and one DiagramReport per diagram block (result.Diagrams).
// Use Input.HTMLOnly to skip PDF generation.
//
// # Conversion Pipeline
//
//  1. Markdown preprocessing (line normalization, ==highlight== outside fences)
//  2. Diagram extraction: fenced blocks whose info word is a diagram language
//  3. Diagram rendering: each block is written to a per-run workspace and
//     rendered to SVG by mmdc, several at a time
//  4. Assembly: text between diagrams goes through Goldmark, rendered
//     diagrams are inlined as SVG
//  5. Local images inlined, CSS injected
//  6. PDF rendering via headless Chrome (go-rod)
//
// A diagram that fails to render is not fatal. Its fenced block stays in the
// document as a highlighted code block and the failure is reported in
// ConvertResult.Diagrams.
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := mmd2pdf.NewConverter(
//	    mmd2pdf.WithTimeout(2 * time.Minute),
//	    mmd2pdf.WithRenderTimeout(20 * time.Second),
//	    mmd2pdf.WithRenderWorkers(4),
//	    mmd2pdf.WithStyle("technical"),
//	    mmd2pdf.WithLogger(slog.Default()),
//	)
//
// Per-conversion options are passed via Input:
//
//	result, err := conv.Convert(ctx, mmd2pdf.Input{
//	    Markdown:  content,
//	    SourceDir: "/path/to/markdown",  // for relative image paths
//	    Title:     "Architecture",
//	    Page:      &mmd2pdf.PageSettings{Size: "letter", Orientation: "landscape", Margin: 0.5},
//	    Footer:    &mmd2pdf.Footer{ShowPageNumber: true},
//	})
//
// # Custom Renderers
//
// Any type with Render(ctx, sourcePath, outputPath) can replace mmdc:
//
//	conv, err := mmd2pdf.NewConverter(mmd2pdf.WithRenderer(myRenderer))
//
// # External Requirements
//
// Diagram rendering requires the Mermaid CLI (npm install -g
// @mermaid-js/mermaid-cli). PDF generation requires Chrome/Chromium; go-rod
// downloads a managed Chromium on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package mmd2pdf
