package mmd2pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/alnah/go-mmd2pdf/internal/fileutil"
	"github.com/alnah/go-mmd2pdf/internal/pipeline"
	"github.com/alnah/go-mmd2pdf/internal/render"
)

// DiagramRenderer renders a diagram source file to an SVG file.
// Implementations must leave no output file behind on failure, or the
// output must be considered invalid by the caller.
type DiagramRenderer interface {
	Render(ctx context.Context, sourcePath, outputPath string) error
}

var _ DiagramRenderer = (*render.MermaidCLI)(nil)

// Render worker sizing constants.
const (
	// MinRenderWorkers ensures at least one diagram renders at a time.
	MinRenderWorkers = 1

	// MaxRenderWorkers caps concurrent mmdc processes, each of which starts
	// its own Chromium.
	MaxRenderWorkers = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ResolveRenderWorkers determines how many diagrams render concurrently.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolveRenderWorkers(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers.
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinRenderWorkers {
		return MinRenderWorkers
	}
	if n > MaxRenderWorkers {
		return MaxRenderWorkers
	}
	return n
}

// renderDiagrams renders every block inside ws on a bounded worker pool.
// It returns the successfully rendered diagrams and one report per block,
// both in block order regardless of completion order. A failed diagram is
// not an error; only cancellation of ctx is.
func (c *Converter) renderDiagrams(ctx context.Context, ws *fileutil.Workspace, blocks []pipeline.DiagramBlock) ([]pipeline.RenderedDiagram, []DiagramReport, error) {
	if len(blocks) == 0 {
		return nil, nil, nil
	}

	workers := min(ResolveRenderWorkers(c.cfg.renderWorkers), len(blocks))

	svgs := make([]string, len(blocks))
	errs := make([]error, len(blocks))
	var wg sync.WaitGroup
	jobs := make(chan int, len(blocks))

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					errs[idx] = err
					continue
				}
				svgs[idx], errs[idx] = c.renderOne(ctx, ws, blocks[idx])
			}
		}()
	}

	for i := range blocks {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	rendered := make([]pipeline.RenderedDiagram, 0, len(blocks))
	reports := make([]DiagramReport, len(blocks))
	for i, block := range blocks {
		reports[i] = DiagramReport{Index: block.Index, Line: block.Line, Err: errs[i]}
		if errs[i] != nil {
			c.logger.Warn("diagram left as code block", "index", block.Index, "line", block.Line, "error", errs[i])
			continue
		}
		c.logger.Debug("diagram rendered", "index", block.Index, "line", block.Line, "bytes", len(svgs[i]))
		rendered = append(rendered, pipeline.RenderedDiagram{Block: block, SVG: svgs[i]})
	}
	return rendered, reports, nil
}

// renderOne writes diagram-<index>.mmd, renders it to diagram-<index>.svg
// and returns the SVG content.
func (c *Converter) renderOne(ctx context.Context, ws *fileutil.Workspace, block pipeline.DiagramBlock) (string, error) {
	src, err := ws.WriteFile(fmt.Sprintf("diagram-%d.mmd", block.Index), block.Source)
	if err != nil {
		return "", fmt.Errorf("%w: writing source: %v", ErrDiagramRender, err)
	}
	out, err := ws.Path(fmt.Sprintf("diagram-%d.svg", block.Index))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDiagramRender, err)
	}

	renderCtx := ctx
	if c.cfg.renderTimeout > 0 {
		var cancel context.CancelFunc
		renderCtx, cancel = context.WithTimeout(ctx, c.cfg.renderTimeout)
		defer cancel()
	}

	if err := c.renderer.Render(renderCtx, src, out); err != nil {
		// The per-diagram deadline expired while the run itself is still live.
		if ctx.Err() == nil && errors.Is(renderCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, render.ErrRenderTimeout) {
			return "", fmt.Errorf("%w: %w after %v", ErrDiagramRender, render.ErrRenderTimeout, c.cfg.renderTimeout)
		}
		return "", fmt.Errorf("%w: %w", ErrDiagramRender, err)
	}

	data, err := os.ReadFile(out) // #nosec G304 -- path inside the run workspace
	if err != nil {
		return "", fmt.Errorf("%w: reading output: %v", ErrDiagramRender, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return "", fmt.Errorf("%w: renderer produced an empty file", ErrDiagramRender)
	}
	return string(data), nil
}
