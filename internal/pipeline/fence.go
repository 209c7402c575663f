package pipeline

import (
	"strings"
)

// DefaultLanguage is the info-string tag that marks a diagram block.
const DefaultLanguage = "mermaid"

// maxFenceIndent is the deepest indentation at which a line can still open
// or close a fence. Four spaces make an indented code block instead.
const maxFenceIndent = 3

// minFenceLength is the shortest run of fence characters.
const minFenceLength = 3

// DiagramBlock is one fenced diagram found in a Markdown document.
// Start and End are byte offsets into the scanned text: source[Start:End]
// is the whole block from the opening fence up to the end of the closing
// fence, without the closing line's terminator.
type DiagramBlock struct {
	Raw      string // source[Start:End]
	Source   string // diagram text between the fences, trimmed
	Start    int
	End      int
	Index    int    // 0-based order of appearance
	Line     int    // 1-based line of the opening fence
	Language string // info-string tag as written
}

// fenceSpan is any fenced code block, diagram or not.
type fenceSpan struct {
	start        int
	end          int
	contentStart int
	contentEnd   int
	line         int
	info         string
	closed       bool
}

// language returns the first word of the info string.
func (f fenceSpan) language() string {
	if i := strings.IndexAny(f.info, " \t{"); i >= 0 {
		return f.info[:i]
	}
	return f.info
}

// ExtractDiagrams returns the fenced blocks whose language tag matches one of
// languages (case-insensitive), in order of appearance. With no languages,
// DefaultLanguage is used. Fences nested inside another fenced block are
// content, not blocks, and an unterminated diagram fence is never matched.
// Returns nil when nothing matches.
func ExtractDiagrams(source string, languages ...string) []DiagramBlock {
	if len(languages) == 0 {
		languages = []string{DefaultLanguage}
	}

	var blocks []DiagramBlock
	for _, f := range scanFences(source) {
		if !f.closed {
			break
		}
		lang := f.language()
		if !matchesLanguage(lang, languages) {
			continue
		}
		blocks = append(blocks, DiagramBlock{
			Raw:      source[f.start:f.end],
			Source:   strings.TrimSpace(source[f.contentStart:f.contentEnd]),
			Start:    f.start,
			End:      f.end,
			Index:    len(blocks),
			Line:     f.line,
			Language: lang,
		})
	}
	return blocks
}

func matchesLanguage(lang string, languages []string) bool {
	if lang == "" {
		return false
	}
	for _, l := range languages {
		if strings.EqualFold(lang, strings.TrimSpace(l)) {
			return true
		}
	}
	return false
}

// scanFences walks source line by line and returns every fenced code block.
// An unterminated fence runs to the end of the input and is the last span.
func scanFences(source string) []fenceSpan {
	var (
		spans   []fenceSpan
		open    *fenceSpan
		char    byte
		length  int
		lineNum int
	)

	for pos := 0; pos < len(source); {
		lineNum++
		lineStart := pos
		lineEnd := strings.IndexByte(source[pos:], '\n')
		if lineEnd < 0 {
			lineEnd = len(source)
			pos = len(source)
		} else {
			lineEnd += pos
			pos = lineEnd + 1
		}
		line := strings.TrimSuffix(source[lineStart:lineEnd], "\r")

		if open == nil {
			c, n, info, ok := parseOpeningFence(line)
			if !ok {
				continue
			}
			char, length = c, n
			open = &fenceSpan{
				start:        lineStart,
				contentStart: pos,
				line:         lineNum,
				info:         info,
			}
			continue
		}

		if isClosingFence(line, char, length) {
			open.contentEnd = lineStart
			open.end = lineStart + len(line)
			open.closed = true
			spans = append(spans, *open)
			open = nil
		}
	}

	if open != nil {
		open.end = len(source)
		open.contentEnd = len(source)
		spans = append(spans, *open)
	}
	return spans
}

// parseOpeningFence reports whether line opens a fenced code block and
// returns the fence character, its run length and the trimmed info string.
func parseOpeningFence(line string) (char byte, length int, info string, ok bool) {
	rest, ok := trimFenceIndent(line)
	if !ok || rest == "" {
		return 0, 0, "", false
	}
	char = rest[0]
	if char != '`' && char != '~' {
		return 0, 0, "", false
	}
	length = runLength(rest, char)
	if length < minFenceLength {
		return 0, 0, "", false
	}
	info = strings.TrimSpace(rest[length:])
	// A backtick in a backtick fence's info string makes the line inline code.
	if char == '`' && strings.IndexByte(info, '`') >= 0 {
		return 0, 0, "", false
	}
	return char, length, info, true
}

// isClosingFence reports whether line closes a fence opened with a run of
// length chars.
func isClosingFence(line string, char byte, length int) bool {
	rest, ok := trimFenceIndent(line)
	if !ok {
		return false
	}
	n := runLength(rest, char)
	if n < length {
		return false
	}
	return strings.TrimSpace(rest[n:]) == ""
}

func trimFenceIndent(line string) (string, bool) {
	indent := 0
	for indent < len(line) && line[indent] == ' ' {
		indent++
	}
	if indent > maxFenceIndent {
		return "", false
	}
	return line[indent:], true
}

func runLength(s string, char byte) int {
	n := 0
	for n < len(s) && s[n] == char {
		n++
	}
	return n
}
