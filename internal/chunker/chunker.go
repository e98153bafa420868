// Package chunker splits rendered action scripts and journal text into
// chunks for search indexing.
package chunker

import (
	"strings"
)

const (
	DefaultTargetSize = 400
	DefaultMaxSize    = 600
)

// Options configures chunking behavior.
type Options struct {
	TargetSize int
	MaxSize    int
}

// DefaultOptions returns default chunking options.
func DefaultOptions() Options {
	return Options{TargetSize: DefaultTargetSize, MaxSize: DefaultMaxSize}
}

// ChunkResult is a chunk with its line span in the original text.
type ChunkResult struct {
	Text      string
	StartLine int
	EndLine   int
}

// Chunk splits text into chunks. Text no longer than MaxSize is one chunk.
// Longer text is cut into statements (a line at the outermost indentation
// of a function body plus the lines nested under it), which are packed
// greedily up to TargetSize. A statement longer than MaxSize is cut on
// line boundaries.
func Chunk(text string, opts Options) []ChunkResult {
	if opts.TargetSize <= 0 || opts.MaxSize <= 0 {
		opts = DefaultOptions()
	}
	text = strings.TrimRight(text, "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= opts.MaxSize {
		return []ChunkResult{{Text: text, StartLine: 1, EndLine: strings.Count(text, "\n") + 1}}
	}
	return pack(statements(text), opts)
}

type span struct {
	lines []string
	start int
}

func (s span) text() string { return strings.Join(s.lines, "\n") }

func (s span) end() int { return s.start + len(s.lines) - 1 }

// statements groups lines so that a statement starts at each line that is
// not nested deeper than the first body line and does not close a block.
func statements(text string) []span {
	lines := strings.Split(text, "\n")
	var out []span
	var cur span
	for i, line := range lines {
		if startsStatement(line) && len(cur.lines) > 0 {
			out = append(out, cur)
			cur = span{}
		}
		if len(cur.lines) == 0 {
			cur.start = i + 1
		}
		cur.lines = append(cur.lines, line)
	}
	if len(cur.lines) > 0 {
		out = append(out, cur)
	}
	return out
}

func startsStatement(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed == "}" || strings.HasPrefix(trimmed, "} ") {
		return false
	}
	indent := len(line) - len(strings.TrimLeft(line, "\t"))
	return indent <= 1
}

func pack(spans []span, opts Options) []ChunkResult {
	var out []ChunkResult
	var acc span
	flush := func() {
		if len(acc.lines) == 0 {
			return
		}
		if t := acc.text(); len(t) > opts.MaxSize {
			out = append(out, hardSplit(acc, opts)...)
		} else if strings.TrimSpace(t) != "" {
			out = append(out, ChunkResult{Text: t, StartLine: acc.start, EndLine: acc.end()})
		}
		acc = span{}
	}
	for _, s := range spans {
		if len(acc.lines) > 0 && len(acc.text())+1+len(s.text()) > opts.TargetSize {
			flush()
		}
		if len(acc.lines) == 0 {
			acc.start = s.start
		}
		acc.lines = append(acc.lines, s.lines...)
	}
	flush()
	return out
}

// hardSplit cuts an oversized span on line boundaries near TargetSize.
func hardSplit(s span, opts Options) []ChunkResult {
	var out []ChunkResult
	var cur []string
	curStart, curLen := s.start, 0
	for i, line := range s.lines {
		if curLen+len(line) > opts.TargetSize && len(cur) > 0 {
			out = append(out, ChunkResult{Text: strings.Join(cur, "\n"), StartLine: curStart, EndLine: s.start + i - 1})
			cur, curStart, curLen = nil, s.start+i, 0
		}
		cur = append(cur, line)
		curLen += len(line) + 1
	}
	if len(cur) > 0 {
		out = append(out, ChunkResult{Text: strings.Join(cur, "\n"), StartLine: curStart, EndLine: s.end()})
	}
	return out
}
