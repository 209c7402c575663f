//go:build integration

package mmd2pdf

// Notes:
// - Integration tests need Chrome (downloaded by rod if missing) and, for
//   diagram tests, mmdc on PATH. Diagram tests skip when mmdc is absent.
// - A single Converter is shared so only one browser is launched.

import (
	"bytes"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/alnah/go-mmd2pdf/internal/render"
)

// testTimeout is the standard timeout for integration test operations.
const testTimeout = 60 * time.Second

// testConverter is shared by all integration tests and closed in TestMain.
var testConverter *Converter

func TestMain(m *testing.M) {
	conv, err := NewConverter(WithTimeout(testTimeout), WithRenderTimeout(testTimeout))
	if err != nil {
		panic(err)
	}
	testConverter = conv

	code := m.Run()

	testConverter.Close()
	os.Exit(code)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func requireMermaidCLI(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath(render.DefaultCommand); err != nil {
		t.Skipf("%s not on PATH", render.DefaultCommand)
	}
}

func assertValidPDF(t *testing.T, data []byte) {
	t.Helper()

	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("data does not have PDF magic bytes, got prefix: %q", data[:min(10, len(data))])
	}

	if len(data) < 100 {
		t.Errorf("PDF data suspiciously small: %d bytes", len(data))
	}
}
