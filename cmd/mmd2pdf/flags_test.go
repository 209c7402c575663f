package main

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	flag "github.com/spf13/pflag"
)

// ---------------------------------------------------------------------------
// TestParseConvertFlags - Flag parsing and positional args
// ---------------------------------------------------------------------------

func TestParseConvertFlags(t *testing.T) {
	t.Parallel()

	args := []string{
		"doc.md",
		"-o", "out.pdf",
		"-c", "team",
		"-q", "-v",
		"-t", "1m",
		"-w", "4",
		"--render-timeout", "20s",
		"--mmdc", "/opt/mmdc",
		"--theme", "neutral",
		"--background", "white",
		"--mermaid-config", "mermaid.json",
		"--puppeteer-config", "puppeteer.json",
		"--lang", "mmd", "--lang", "diagram",
		"-p", "letter",
		"--orientation", "landscape",
		"--margin", "0.75",
		"--footer-position", "left",
		"--footer-text", "Internal",
		"--footer-date", "auto:iso",
		"--footer-page-number",
		"--no-footer",
		"--style", "technical",
		"--asset-path", "assets",
		"--no-style",
		"--html", "--html-only", "--watch",
	}

	f, positional, err := parseConvertFlags(args, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !slices.Equal(positional, []string{"doc.md"}) {
		t.Errorf("positional = %v, want [doc.md]", positional)
	}
	if f.output != "out.pdf" || f.timeout != "1m" || f.workers != 4 {
		t.Errorf("I/O flags = output %q timeout %q workers %d", f.output, f.timeout, f.workers)
	}
	if f.common != (commonFlags{config: "team", quiet: true, verbose: true}) {
		t.Errorf("common = %+v", f.common)
	}

	r := f.renderer
	if r.command != "/opt/mmdc" || r.theme != "neutral" || r.background != "white" ||
		r.mermaidConfig != "mermaid.json" || r.puppeteerConfig != "puppeteer.json" || r.timeout != "20s" {
		t.Errorf("renderer = %+v", r)
	}
	if !slices.Equal(r.languages, []string{"mmd", "diagram"}) {
		t.Errorf("languages = %v", r.languages)
	}
	if f.page != (pageFlags{size: "letter", orientation: "landscape", margin: 0.75}) {
		t.Errorf("page = %+v", f.page)
	}
	wantFooter := footerFlags{position: "left", text: "Internal", date: "auto:iso", pageNumber: true, disabled: true}
	if f.footer != wantFooter {
		t.Errorf("footer = %+v, want %+v", f.footer, wantFooter)
	}
	if f.assets != (assetFlags{style: "technical", assetPath: "assets", noStyle: true}) {
		t.Errorf("assets = %+v", f.assets)
	}
	if f.outputMode != (outputFlags{html: true, htmlOnly: true, watch: true}) {
		t.Errorf("outputMode = %+v", f.outputMode)
	}
}

func TestParseConvertFlags_LangCommaSeparated(t *testing.T) {
	t.Parallel()

	f, _, err := parseConvertFlags([]string{"--lang", "mmd,diagram"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(f.renderer.languages, []string{"mmd", "diagram"}) {
		t.Errorf("languages = %v", f.renderer.languages)
	}
}

func TestParseConvertFlags_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "help", args: []string{"-h"}, wantErr: flag.ErrHelp},
		{name: "unknown flag", args: []string{"--toc"}},
		{name: "bad int", args: []string{"-w", "many"}},
		{name: "bad float", args: []string{"--margin", "wide"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var usage bytes.Buffer
			_, _, err := parseConvertFlags(tt.args, &usage)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if errors.Is(err, flag.ErrHelp) && usage.Len() == 0 {
				t.Error("usage should be written for -h")
			}
		})
	}
}
