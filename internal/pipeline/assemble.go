package pipeline

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrAssembly indicates the rendered spans do not partition the source.
// It is a caller bug, never a content problem.
var ErrAssembly = errors.New("document assembly failed")

// DiagramClass is the CSS class of the element wrapping each inline SVG.
const DiagramClass = "mermaid-diagram"

// RenderedDiagram pairs an extracted block with its rendered SVG markup.
type RenderedDiagram struct {
	Block DiagramBlock
	SVG   string
}

// MarkupConverter converts one run of Markdown text to an HTML fragment.
// Implementations must pass raw HTML through and accept empty input.
type MarkupConverter interface {
	ToFragment(ctx context.Context, markdown string) (string, error)
}

// svgPrologPattern matches an XML declaration or DOCTYPE ahead of the <svg> root.
var svgPrologPattern = regexp.MustCompile(`(?is)^\s*(<\?xml.*?\?>\s*|<!DOCTYPE[^>]*>\s*)+`)

// Assemble splices rendered diagrams into source.
// rendered must be sorted by Block.Start with non-overlapping spans inside
// source. Text between diagrams is converted run by run; each diagram span
// is replaced by a wrapper div holding its SVG. Blocks missing from rendered
// stay in the text runs and render as ordinary code blocks.
func Assemble(ctx context.Context, source string, rendered []RenderedDiagram, conv MarkupConverter) (string, error) {
	var (
		out    strings.Builder
		cursor int
	)

	for _, d := range rendered {
		start, end := d.Block.Start, d.Block.End
		if start < cursor || end < start || end > len(source) {
			return "", fmt.Errorf("%w: diagram %d span [%d,%d) invalid after offset %d (source length %d)",
				ErrAssembly, d.Block.Index, start, end, cursor, len(source))
		}

		if err := appendRun(ctx, &out, source[cursor:start], conv); err != nil {
			return "", err
		}
		out.WriteString(diagramElement(d))
		cursor = end
	}

	if err := appendRun(ctx, &out, source[cursor:], conv); err != nil {
		return "", err
	}
	return out.String(), nil
}

func appendRun(ctx context.Context, out *strings.Builder, run string, conv MarkupConverter) error {
	if run == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	fragment, err := conv.ToFragment(ctx, run)
	if err != nil {
		return err
	}
	out.WriteString(fragment)
	return nil
}

func diagramElement(d RenderedDiagram) string {
	return `<div class="` + DiagramClass + `" data-diagram="` + strconv.Itoa(d.Block.Index) + `">` +
		StripSVGProlog(d.SVG) + `</div>`
}

// StripSVGProlog removes a leading XML declaration and DOCTYPE so the SVG
// can be embedded in HTML.
func StripSVGProlog(svg string) string {
	return strings.TrimSpace(svgPrologPattern.ReplaceAllString(svg, ""))
}
