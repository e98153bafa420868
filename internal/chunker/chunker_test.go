package chunker

import (
	"fmt"
	"strings"
	"testing"
)

func script(calls int) string {
	var b strings.Builder
	b.WriteString("package main\n\nimport \"forgecore/host\"\n\nfunc Run() error {\n")
	for i := 0; i < calls; i++ {
		fmt.Fprintf(&b, "\tif _, err := host.Call(\"set_location\", \"object\", \"Cube.%03d\", \"location\", host.Vec(%d.0, 0.0, 0.0)); err != nil {\n\t\treturn err\n\t}\n", i, i*3)
	}
	b.WriteString("\treturn nil\n}\n")
	return b.String()
}

func TestChunk_EmptyInput(t *testing.T) {
	if got := Chunk("  \n", DefaultOptions()); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestChunk_ShortContent(t *testing.T) {
	text := "create a large blue sphere at 5 0 0"
	got := Chunk(text, DefaultOptions())
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
	if got[0].Text != text || got[0].StartLine != 1 || got[0].EndLine != 1 {
		t.Errorf("unexpected chunk %+v", got[0])
	}
}

func TestChunk_KeepsStatementsWhole(t *testing.T) {
	got := Chunk(script(12), DefaultOptions())
	if len(got) < 2 {
		t.Fatalf("expected several chunks, got %d", len(got))
	}
	for i, c := range got {
		if strings.HasPrefix(strings.TrimSpace(c.Text), "return err") {
			t.Errorf("chunk %d starts inside an if block: %q", i, c.Text)
		}
		if strings.Count(c.Text, "host.Call(") != strings.Count(c.Text, "return err") {
			t.Errorf("chunk %d splits a call from its error check", i)
		}
	}
}

func TestChunk_LineSpansAreContiguous(t *testing.T) {
	text := script(20)
	got := Chunk(text, DefaultOptions())
	next := 1
	for i, c := range got {
		if c.StartLine != next {
			t.Errorf("chunk %d starts at line %d, want %d", i, c.StartLine, next)
		}
		next = c.EndLine + 1
	}
	if total := strings.Count(strings.TrimRight(text, "\n"), "\n") + 1; next-1 != total {
		t.Errorf("chunks end at line %d, text has %d", next-1, total)
	}
}

func TestChunk_HardSplitsLongStatements(t *testing.T) {
	opts := Options{TargetSize: 100, MaxSize: 150}
	var lines []string
	for i := 0; i < 10; i++ {
		lines = append(lines, "\t\tnested line that is about forty chars")
	}
	text := "\tif true {\n" + strings.Join(lines, "\n") + "\n\t}"
	got := Chunk(text, opts)
	if len(got) < 3 {
		t.Fatalf("expected hard split into several chunks, got %d", len(got))
	}
	for i, c := range got {
		if len(c.Text) > opts.MaxSize {
			t.Errorf("chunk %d has %d chars, max %d", i, len(c.Text), opts.MaxSize)
		}
	}
}
