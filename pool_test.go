package mmd2pdf

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alnah/go-mmd2pdf/internal/fileutil"
	"github.com/alnah/go-mmd2pdf/internal/pipeline"
	"github.com/alnah/go-mmd2pdf/internal/render"
)

// ---------------------------------------------------------------------------
// TestResolveRenderWorkers
// ---------------------------------------------------------------------------

func TestResolveRenderWorkers(t *testing.T) {
	t.Parallel()

	if got := ResolveRenderWorkers(3); got != 3 {
		t.Errorf("ResolveRenderWorkers(3) = %d, want 3", got)
	}

	want := runtime.GOMAXPROCS(0) / cpuDivisor
	want = max(MinRenderWorkers, min(want, MaxRenderWorkers))
	for _, in := range []int{0, -1} {
		if got := ResolveRenderWorkers(in); got != want {
			t.Errorf("ResolveRenderWorkers(%d) = %d, want %d", in, got, want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRenderDiagrams - Worker bound
// ---------------------------------------------------------------------------

// concurrencyRenderer records the highest number of overlapping renders.
type concurrencyRenderer struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (r *concurrencyRenderer) Render(ctx context.Context, sourcePath, outputPath string) error {
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		p := r.peak.Load()
		if n <= p || r.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	return (&mockRenderer{}).Render(ctx, sourcePath, outputPath)
}

func TestRenderDiagrams_BoundedWorkers(t *testing.T) {
	t.Parallel()

	renderer := &concurrencyRenderer{}
	conv, err := NewConverter(WithRenderer(renderer), WithRenderWorkers(2), withPDFConverter(&mockPDFConverter{}))
	if err != nil {
		t.Fatal(err)
	}

	ws, err := fileutil.NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()

	md := ""
	for i := 0; i < 6; i++ {
		md += "```mermaid\nA\n```\n\n"
	}
	blocks := pipeline.ExtractDiagrams(md)

	rendered, reports, err := conv.renderDiagrams(context.Background(), ws, blocks)
	if err != nil {
		t.Fatalf("renderDiagrams() error = %v", err)
	}
	if len(rendered) != 6 || len(reports) != 6 {
		t.Fatalf("rendered %d, reports %d, want 6 each", len(rendered), len(reports))
	}
	if peak := renderer.peak.Load(); peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
	for i, r := range rendered {
		if r.Block.Index != i {
			t.Errorf("rendered[%d].Block.Index = %d", i, r.Block.Index)
		}
	}
}

func TestRenderDiagrams_TimeoutIsReported(t *testing.T) {
	t.Parallel()

	// The renderer blocks until its context ends, like a hung mmdc.
	renderer := &mockRenderer{render: func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	conv, err := NewConverter(
		WithRenderer(renderer),
		WithRenderTimeout(20*time.Millisecond),
		withPDFConverter(&mockPDFConverter{}),
	)
	if err != nil {
		t.Fatal(err)
	}

	ws, err := fileutil.NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()

	blocks := pipeline.ExtractDiagrams("```mermaid\nA\n```\n")
	rendered, reports, err := conv.renderDiagrams(context.Background(), ws, blocks)
	if err != nil {
		t.Fatalf("renderDiagrams() error = %v", err)
	}
	if len(rendered) != 0 || len(reports) != 1 {
		t.Fatalf("rendered %d, reports %d, want 0 and 1", len(rendered), len(reports))
	}
	if !errors.Is(reports[0].Err, ErrDiagramRender) || !errors.Is(reports[0].Err, render.ErrRenderTimeout) {
		t.Errorf("report error = %v, want ErrDiagramRender wrapping ErrRenderTimeout", reports[0].Err)
	}
}

func TestRenderDiagrams_Empty(t *testing.T) {
	t.Parallel()

	conv := &Converter{}
	rendered, reports, err := conv.renderDiagrams(context.Background(), nil, nil)
	if rendered != nil || reports != nil || err != nil {
		t.Errorf("renderDiagrams(nil) = %v, %v, %v", rendered, reports, err)
	}
}
