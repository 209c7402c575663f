package pipeline

import (
	"context"
	"testing"
)

// ---------------------------------------------------------------------------
// TestPreprocessMarkdown - Normalization outside fences
// ---------------------------------------------------------------------------

func TestPreprocessMarkdown(t *testing.T) {
	t.Parallel()

	const (
		ms = MarkStartPlaceholder
		me = MarkEndPlaceholder
	)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "CRLF normalized",
			input: "a\r\nb\rc\n",
			want:  "a\nb\nc\n",
		},
		{
			name:  "highlight converted",
			input: "this is ==important== text",
			want:  "this is " + ms + "important" + me + " text",
		},
		{
			name:  "blank lines compressed",
			input: "a\n\n\n\n\nb",
			want:  "a\n\nb",
		},
		{
			name:  "mermaid thick links untouched",
			input: "```mermaid\ngraph LR\nA == label ==> B\n```\n",
			want:  "```mermaid\ngraph LR\nA == label ==> B\n```\n",
		},
		{
			name:  "blank lines inside fence kept",
			input: "```mermaid\nA\n\n\n\nB\n```",
			want:  "```mermaid\nA\n\n\n\nB\n```",
		},
		{
			name:  "text around fence still processed",
			input: "==x==\n```mermaid\nA == B ==> C\n```\n==y==",
			want:  ms + "x" + me + "\n```mermaid\nA == B ==> C\n```\n" + ms + "y" + me,
		},
		{
			name:  "CRLF fence normalized before scanning",
			input: "```mermaid\r\nA == B ==> C\r\n```\r\n",
			want:  "```mermaid\nA == B ==> C\n```\n",
		},
	}

	p := &CommonMarkPreprocessor{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := p.PreprocessMarkdown(context.Background(), tt.input); got != tt.want {
				t.Errorf("PreprocessMarkdown(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPreprocessMarkdown_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := "a\r\n==b=="
	p := &CommonMarkPreprocessor{}
	if got := p.PreprocessMarkdown(ctx, input); got != input {
		t.Errorf("cancelled preprocess should return input unchanged, got %q", got)
	}
}

func TestConvertMarkPlaceholders(t *testing.T) {
	t.Parallel()

	input := "a " + MarkStartPlaceholder + "b" + MarkEndPlaceholder + " c"
	if got := ConvertMarkPlaceholders(input); got != "a <mark>b</mark> c" {
		t.Errorf("ConvertMarkPlaceholders() = %q", got)
	}
}
