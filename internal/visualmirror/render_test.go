package visualmirror

import (
	"strings"
	"testing"

	"github.com/patrick-goecommerce/terminal-mcp/internal/vt"
)

func TestColorToLipgloss(t *testing.T) {
	cases := []struct {
		name string
		c    vt.Color
		ok   bool
		want string
	}{
		{"default", vt.Color{Kind: vt.ColorDefault}, false, ""},
		{"named16", vt.Color{Kind: vt.ColorNamed16, Value: 4}, true, "4"},
		{"indexed256", vt.Color{Kind: vt.ColorIndexed256, Value: 200}, true, "200"},
		{"rgb", vt.Color{Kind: vt.ColorRGB, Value: (10 << 16) | (20 << 8) | 30}, true, "#0a141e"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := colorToLipgloss(tc.c)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && string(got) != tc.want {
				t.Errorf("color = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRunStyle_AppliesBoldAndColor(t *testing.T) {
	r := vt.Run{
		Row: 0, Col: 0, Text: "hi",
		FG:    vt.Color{Kind: vt.ColorNamed16, Value: 1},
		Style: vt.StyleBold | vt.StyleUnderline,
	}
	style := runStyle(r)
	if !style.GetBold() {
		t.Error("expected bold")
	}
	if !style.GetUnderline() {
		t.Error("expected underline")
	}
}

func TestRenderGrid_PositionsRunsByColumn(t *testing.T) {
	runs := []vt.Run{
		{Row: 0, Col: 0, Text: "ab"},
		{Row: 0, Col: 5, Text: "cd"},
		{Row: 1, Col: 0, Text: "xy"},
	}
	out := renderGrid(runs, 2, 10)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "ab") || !strings.Contains(lines[0], "cd") {
		t.Errorf("row 0 = %q, want to contain both runs", lines[0])
	}
	if !strings.Contains(lines[1], "xy") {
		t.Errorf("row 1 = %q, want to contain xy", lines[1])
	}
}

func TestRenderGrid_TruncatesRunsPastCols(t *testing.T) {
	runs := []vt.Run{
		{Row: 0, Col: 8, Text: "abcdef"},
	}
	out := renderGrid(runs, 1, 10)
	if strings.Contains(out, "cdef") {
		t.Errorf("expected truncation at col width, got %q", out)
	}
}

func TestRenderGrid_IgnoresOutOfRangeRows(t *testing.T) {
	runs := []vt.Run{
		{Row: 5, Col: 0, Text: "ignored"},
	}
	out := renderGrid(runs, 2, 10)
	if strings.Contains(out, "ignored") {
		t.Errorf("expected out-of-range row to be skipped, got %q", out)
	}
}
