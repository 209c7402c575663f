//go:build integration

package mmd2pdf

import (
	"context"
	"strings"
	"testing"

	"github.com/alnah/go-mmd2pdf/internal/fileutil"
)

func TestConvert_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	t.Run("document without diagrams", func(t *testing.T) {
		result, err := testConverter.Convert(ctx, Input{
			Markdown: "# Hello\n\nPlain **text**.",
			Footer:   &Footer{ShowPageNumber: true},
		})
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		assertValidPDF(t, result.PDF)
	})

	t.Run("diagram rendered by mmdc", func(t *testing.T) {
		requireMermaidCLI(t)

		result, err := testConverter.Convert(ctx, Input{
			Markdown: "# Title\n\n```mermaid\ngraph TD\nA-->B\n```\n\nEnd.",
			Page:     &PageSettings{Size: "letter", Orientation: "landscape", Margin: 0.5},
		})
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if failed := result.Failed(); len(failed) != 0 {
			t.Fatalf("diagram failed: %v", failed[0].Err)
		}
		htmlOut := string(result.HTML)
		if !strings.Contains(htmlOut, `<div class="mermaid-diagram" data-diagram="0"><svg`) {
			t.Errorf("SVG not embedded:\n%.500s", htmlOut)
		}
		if strings.Contains(htmlOut, "<?xml") {
			t.Error("XML prolog should be stripped")
		}
		assertValidPDF(t, result.PDF)
	})

	t.Run("invalid diagram kept as code", func(t *testing.T) {
		requireMermaidCLI(t)

		result, err := testConverter.Convert(ctx, Input{
			Markdown: "```mermaid\nthis is not a diagram ->->\n```\n",
		})
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if len(result.Failed()) != 1 {
			t.Errorf("Diagrams = %+v, want one failure", result.Diagrams)
		}
		assertValidPDF(t, result.PDF)
	})
}

func TestRodConverter_ToPDF_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	ws, err := fileutil.NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()

	conv := newRodConverter(testTimeout)
	defer conv.Close()

	data, err := conv.ToPDF(ctx, ws, `<!DOCTYPE html><html><body><h1>Hi</h1></body></html>`, &pdfOptions{
		Footer: &Footer{Text: "footer", Position: "center"},
	})
	if err != nil {
		t.Fatalf("ToPDF() error = %v", err)
	}
	assertValidPDF(t, data)
}
