package visualmirror

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/patrick-goecommerce/terminal-mcp/internal/vt"
)

// renderGrid renders a vt.Grid's lossless StyledRuns as one
// lipgloss-styled string per row, for every row from the top, padding
// up to each run's column and clipping text past cols.
func renderGrid(runs []vt.Run, rows, cols int) string {
	lines := make([]strings.Builder, rows)
	col := make([]int, rows)

	for _, run := range runs {
		if run.Row < 0 || run.Row >= rows {
			continue
		}
		for col[run.Row] < run.Col && col[run.Row] < cols {
			lines[run.Row].WriteByte(' ')
			col[run.Row]++
		}
		style := runStyle(run)
		text := run.Text
		if run.Col+len([]rune(text)) > cols {
			runes := []rune(text)
			if run.Col < cols {
				text = string(runes[:cols-run.Col])
			} else {
				text = ""
			}
		}
		lines[run.Row].WriteString(style.Render(text))
		col[run.Row] += len([]rune(text))
	}

	out := make([]string, rows)
	for r := range lines {
		out[r] = lines[r].String()
	}
	return strings.Join(out, "\n")
}

func runStyle(r vt.Run) lipgloss.Style {
	style := lipgloss.NewStyle()
	if fg, ok := colorToLipgloss(r.FG); ok {
		style = style.Foreground(fg)
	}
	if bg, ok := colorToLipgloss(r.BG); ok {
		style = style.Background(bg)
	}
	if r.Style.Has(vt.StyleBold) {
		style = style.Bold(true)
	}
	if r.Style.Has(vt.StyleItalic) {
		style = style.Italic(true)
	}
	if r.Style.Has(vt.StyleUnderline) {
		style = style.Underline(true)
	}
	if r.Style.Has(vt.StyleStrikethrough) {
		style = style.Strikethrough(true)
	}
	if r.Style.Has(vt.StyleReverse) {
		style = style.Reverse(true)
	}
	return style
}

func colorToLipgloss(c vt.Color) (lipgloss.Color, bool) {
	switch c.Kind {
	case vt.ColorDefault:
		return "", false
	case vt.ColorNamed16:
		return lipgloss.Color(fmt.Sprintf("%d", c.Value)), true
	case vt.ColorIndexed256:
		return lipgloss.Color(fmt.Sprintf("%d", c.Value)), true
	case vt.ColorRGB:
		return lipgloss.Color(fmt.Sprintf("#%06x", c.Value)), true
	default:
		return "", false
	}
}
