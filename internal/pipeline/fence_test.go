package pipeline

// Notes:
// - Offsets are asserted through Raw == source[Start:End] plus the partition
//   property, rather than hand-computed byte positions.
// - Fences inside blockquotes and list items are not recognized; CommonMark
//   container blocks are out of scope for extraction.

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestExtractDiagrams - Fence matching
// ---------------------------------------------------------------------------

func TestExtractDiagrams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		source     string
		languages  []string
		wantRaw    []string
		wantSource []string
	}{
		{
			name:   "no diagrams",
			source: "# Title\n\nJust text.\n\n```go\nfunc main() {}\n```\n",
		},
		{
			name:       "single diagram",
			source:     "# Title\n\n```mermaid\ngraph TD\nA-->B\n```\n\nText\n",
			wantRaw:    []string{"```mermaid\ngraph TD\nA-->B\n```"},
			wantSource: []string{"graph TD\nA-->B"},
		},
		{
			name:       "source is trimmed",
			source:     "```mermaid\n\n  graph LR\n    A-->B  \n\n```",
			wantRaw:    []string{"```mermaid\n\n  graph LR\n    A-->B  \n\n```"},
			wantSource: []string{"graph LR\n    A-->B"},
		},
		{
			name:       "multiple diagrams in order",
			source:     "```mermaid\nfirst\n```\n\ntext\n\n```mermaid\nsecond\n```\n",
			wantRaw:    []string{"```mermaid\nfirst\n```", "```mermaid\nsecond\n```"},
			wantSource: []string{"first", "second"},
		},
		{
			name:       "case-insensitive language tag",
			source:     "```Mermaid\nA\n```\n",
			wantRaw:    []string{"```Mermaid\nA\n```"},
			wantSource: []string{"A"},
		},
		{
			name:       "info string attributes after tag",
			source:     "``` mermaid {theme=dark}\nA\n```\n",
			wantRaw:    []string{"``` mermaid {theme=dark}\nA\n```"},
			wantSource: []string{"A"},
		},
		{
			name:       "tilde fence",
			source:     "~~~mermaid\nA\n~~~\n",
			wantRaw:    []string{"~~~mermaid\nA\n~~~"},
			wantSource: []string{"A"},
		},
		{
			name:       "indented up to three spaces",
			source:     "   ```mermaid\nA\n   ```\n",
			wantRaw:    []string{"   ```mermaid\nA\n   ```"},
			wantSource: []string{"A"},
		},
		{
			name:   "four spaces is an indented code block",
			source: "    ```mermaid\n    A\n    ```\n",
		},
		{
			name:       "longer opener needs longer closer",
			source:     "````mermaid\nA\n```\nB\n````\n",
			wantRaw:    []string{"````mermaid\nA\n```\nB\n````"},
			wantSource: []string{"A\n```\nB"},
		},
		{
			name:       "closer may be longer than opener",
			source:     "```mermaid\nA\n`````\n",
			wantRaw:    []string{"```mermaid\nA\n`````"},
			wantSource: []string{"A"},
		},
		{
			name:       "mismatched fence char does not close",
			source:     "```mermaid\nA\n~~~\nB\n```\n",
			wantRaw:    []string{"```mermaid\nA\n~~~\nB\n```"},
			wantSource: []string{"A\n~~~\nB"},
		},
		{
			name:       "closing line with text is content",
			source:     "```mermaid\nA\n``` not a close\n```\n",
			wantRaw:    []string{"```mermaid\nA\n``` not a close\n```"},
			wantSource: []string{"A\n``` not a close"},
		},
		{
			name:   "diagram nested in markdown example",
			source: "````markdown\n```mermaid\nA\n```\n````\n",
		},
		{
			name:       "diagram after nested example",
			source:     "````md\n```mermaid\nnested\n```\n````\n\n```mermaid\nreal\n```\n",
			wantRaw:    []string{"```mermaid\nreal\n```"},
			wantSource: []string{"real"},
		},
		{
			name:   "unterminated diagram is not matched",
			source: "# Title\n\n```mermaid\ngraph TD\nA-->B\n",
		},
		{
			name:       "terminated diagram before unterminated one",
			source:     "```mermaid\nok\n```\n\n```mermaid\nbroken\n",
			wantRaw:    []string{"```mermaid\nok\n```"},
			wantSource: []string{"ok"},
		},
		{
			name:   "diagram opener inside other fence is content",
			source: "```go\nfunc x() {}\n\n```mermaid\nA\n```\n",
		},
		{
			name:       "adjacent diagrams",
			source:     "```mermaid\nA\n```\n```mermaid\nB\n```",
			wantRaw:    []string{"```mermaid\nA\n```", "```mermaid\nB\n```"},
			wantSource: []string{"A", "B"},
		},
		{
			name:       "empty diagram body",
			source:     "```mermaid\n```\n",
			wantRaw:    []string{"```mermaid\n```"},
			wantSource: []string{""},
		},
		{
			name:   "backtick in info string is inline code",
			source: "```mermaid `x`\nA\n```\n",
		},
		{
			name:   "bare fence has no language",
			source: "```\nA\n```\n",
		},
		{
			name:       "custom language",
			source:     "```diagram\nA->B\n```\n```mermaid\nC\n```\n",
			languages:  []string{"diagram"},
			wantRaw:    []string{"```diagram\nA->B\n```"},
			wantSource: []string{"A->B"},
		},
		{
			name:       "several languages",
			source:     "```diagram\nA->B\n```\n```mermaid\nC\n```\n",
			languages:  []string{"mermaid", "diagram"},
			wantRaw:    []string{"```diagram\nA->B\n```", "```mermaid\nC\n```"},
			wantSource: []string{"A->B", "C"},
		},
		{
			name:       "prefix of language does not match",
			source:     "```mermaidjs\nA\n```\n",
			languages:  []string{"mermaid"},
			wantRaw:    nil,
			wantSource: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			blocks := ExtractDiagrams(tt.source, tt.languages...)

			if len(tt.wantRaw) == 0 {
				if blocks != nil {
					t.Fatalf("expected nil, got %d blocks: %+v", len(blocks), blocks)
				}
				return
			}
			if len(blocks) != len(tt.wantRaw) {
				t.Fatalf("got %d blocks, want %d: %+v", len(blocks), len(tt.wantRaw), blocks)
			}

			for i, b := range blocks {
				if b.Index != i {
					t.Errorf("block %d: Index = %d", i, b.Index)
				}
				if b.Raw != tt.wantRaw[i] {
					t.Errorf("block %d: Raw = %q, want %q", i, b.Raw, tt.wantRaw[i])
				}
				if got := tt.source[b.Start:b.End]; got != b.Raw {
					t.Errorf("block %d: source[Start:End] = %q, want Raw %q", i, got, b.Raw)
				}
				if b.Source != tt.wantSource[i] {
					t.Errorf("block %d: Source = %q, want %q", i, b.Source, tt.wantSource[i])
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExtractDiagrams_Metadata - Line numbers and language
// ---------------------------------------------------------------------------

func TestExtractDiagrams_Metadata(t *testing.T) {
	t.Parallel()

	source := "# Title\n\n```mermaid\nA\n```\n\ntext\n\n~~~MERMAID\nB\n~~~\n"
	blocks := ExtractDiagrams(source)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}

	if blocks[0].Line != 3 {
		t.Errorf("block 0 Line = %d, want 3", blocks[0].Line)
	}
	if blocks[1].Line != 9 {
		t.Errorf("block 1 Line = %d, want 9", blocks[1].Line)
	}
	if blocks[0].Language != "mermaid" {
		t.Errorf("block 0 Language = %q, want %q", blocks[0].Language, "mermaid")
	}
	if blocks[1].Language != "MERMAID" {
		t.Errorf("block 1 Language = %q, want %q", blocks[1].Language, "MERMAID")
	}
	if blocks[0].Start != strings.Index(source, "```mermaid") {
		t.Errorf("block 0 Start = %d, want %d", blocks[0].Start, strings.Index(source, "```mermaid"))
	}
}

// ---------------------------------------------------------------------------
// TestExtractDiagrams_Partition - Spans partition the source
// ---------------------------------------------------------------------------

func TestExtractDiagrams_Partition(t *testing.T) {
	t.Parallel()

	sources := []string{
		"```mermaid\nA\n```",
		"```mermaid\nA\n```\n```mermaid\nB\n```\n",
		"lead\n```mermaid\nA\n```\nmiddle\n```mermaid\nB\n```\ntrail",
		"# T\r\n\r\n```mermaid\r\nA\r\n```\r\n\r\nEnd.\r\n",
	}

	for _, source := range sources {
		blocks := ExtractDiagrams(source)
		if len(blocks) == 0 {
			t.Fatalf("no blocks in %q", source)
		}

		var rebuilt strings.Builder
		cursor := 0
		for _, b := range blocks {
			if b.Start < cursor || b.End < b.Start || b.End > len(source) {
				t.Fatalf("invalid span [%d,%d) after %d in %q", b.Start, b.End, cursor, source)
			}
			rebuilt.WriteString(source[cursor:b.Start])
			rebuilt.WriteString(b.Raw)
			cursor = b.End
		}
		rebuilt.WriteString(source[cursor:])

		if rebuilt.String() != source {
			t.Errorf("partition does not rebuild source:\n got %q\nwant %q", rebuilt.String(), source)
		}
	}
}

// ---------------------------------------------------------------------------
// TestExtractDiagrams_CRLF - Carriage returns stay outside the span
// ---------------------------------------------------------------------------

func TestExtractDiagrams_CRLF(t *testing.T) {
	t.Parallel()

	source := "```mermaid\r\nA-->B\r\n```\r\nafter"
	blocks := ExtractDiagrams(source)
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}

	if blocks[0].Source != "A-->B" {
		t.Errorf("Source = %q, want %q", blocks[0].Source, "A-->B")
	}
	if !strings.HasSuffix(blocks[0].Raw, "```") {
		t.Errorf("Raw should end at the closing fence, got %q", blocks[0].Raw)
	}
	if source[blocks[0].End:] != "\r\nafter" {
		t.Errorf("text after block = %q, want %q", source[blocks[0].End:], "\r\nafter")
	}
}
