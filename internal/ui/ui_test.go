package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestTable_AlignsColumns(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	Table(&buf, []string{"ID", "PROTO"}, [][]string{
		{"a", "tcp"},
		{"longer-id", "quic"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines=%d", len(lines))
	}
	col := strings.Index(lines[1], "tcp")
	if col != strings.Index(lines[2], "quic") {
		t.Fatalf("misaligned:\n%s", buf.String())
	}
	if !strings.HasPrefix(lines[0], "ID") {
		t.Fatalf("header=%q", lines[0])
	}
}

func TestProtocolStyle_FallsBackToSubtle(t *testing.T) {
	if ProtocolStyle("tcp") == Subtle {
		t.Fatal("tcp mapped to fallback")
	}
	if ProtocolStyle("other") != Subtle {
		t.Fatal("unknown class not subtle")
	}
}
