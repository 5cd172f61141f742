package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/ringtower/pkg/paint"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestPalette(t *testing.T) {
	red, _ := paint.ParseHex("#ff0000")
	blue, _ := paint.ParseHex("#0000ff")
	green, _ := paint.ParseHex("#00ff00")

	colors := paint.ColorMap{
		{Ring: 0, Layer: 0, Module: 0}: red,
		{Ring: 0, Layer: 0, Module: 1}: blue,
		{Ring: 0, Layer: 0, Module: 2}: blue,
		{Ring: 1, Layer: 0, Module: 0}: green,
	}
	got := palette(colors)
	if len(got) != 3 {
		t.Fatalf("palette() = %d entries, want 3", len(got))
	}
	want := []struct {
		hex   string
		count int
	}{{"#0000ff", 2}, {"#00ff00", 1}, {"#ff0000", 1}}
	for i, w := range want {
		if got[i].color.Hex() != w.hex || got[i].count != w.count {
			t.Errorf("palette()[%d] = %s × %d, want %s × %d", i, got[i].color.Hex(), got[i].count, w.hex, w.count)
		}
	}

	if len(palette(nil)) != 0 {
		t.Error("empty map should give an empty palette")
	}
}

func TestPrintStats(t *testing.T) {
	out := captureStdout(t)

	printStats(200, 3, 2048, false)
	printStats(0, 0, 0, true)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	for _, want := range []string{"200 primitives", "3 painted", "2.0 KB", "fresh"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("first line missing %q: %q", want, lines[0])
		}
	}
	if strings.Contains(lines[1], "primitives") || !strings.Contains(lines[1], "cached") {
		t.Errorf("second line = %q", lines[1])
	}
}

func TestPrintPalette(t *testing.T) {
	out := captureStdout(t)
	red, _ := paint.ParseHex("#ff0000")

	printPalette(paint.ColorMap{{Ring: 0}: red, {Ring: 0, Module: 1}: red})
	if !strings.Contains(out.String(), "#ff0000") || !strings.Contains(out.String(), "× 2") {
		t.Errorf("printPalette() = %q", out.String())
	}
}
