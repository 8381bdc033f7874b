package vt

import "strings"

// Run is a contiguous span of cells sharing identical rendering
// attributes, used for the lossless "styled runs" rendering.
type Run struct {
	Row   int
	Col   int
	Text  string
	FG    Color
	BG    Color
	Style StyleFlags
}

// PlainText renders the grid as rows of text, trailing spaces trimmed
// per row and rows joined by "\n". This is the lossy rendering mode.
func (g *Grid) PlainText() string {
	var b strings.Builder
	rows := g.rows()
	for r, row := range rows {
		if r > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(plainTextRow(row))
	}
	return b.String()
}

// PlainTextRow renders a single row as text with trailing spaces
// trimmed.
func (g *Grid) PlainTextRow(r int) string {
	if r < 0 || r >= g.dims.Rows {
		return ""
	}
	return plainTextRow(g.rows()[r])
}

func plainTextRow(row []Cell) string {
	var b strings.Builder
	for _, c := range row {
		if c.WideTail {
			continue
		}
		if c.Character == 0 {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(c.Character)
	}
	return strings.TrimRight(b.String(), " ")
}

// StyledRuns renders the grid as an ordered sequence of runs, each a
// maximal span of cells on one row sharing identical FG/BG/Style. This
// is the lossless rendering mode, read by the debug visual mirror through
// Session.StyledRuns. Snapshots taken with IncludeRaw do not carry styled
// runs: they fill TerminalStateTree.Raw with PlainText.
func (g *Grid) StyledRuns() []Run {
	var runs []Run
	rows := g.rows()
	for r, row := range rows {
		var cur *Run
		for c, cell := range row {
			if cell.WideTail {
				continue
			}
			ch := cell.Character
			if ch == 0 {
				ch = ' '
			}
			if cur != nil && cur.FG == cell.FG && cur.BG == cell.BG && cur.Style == cell.Style {
				cur.Text += string(ch)
				continue
			}
			if cur != nil {
				runs = append(runs, *cur)
			}
			cur = &Run{Row: r, Col: c, Text: string(ch), FG: cell.FG, BG: cell.BG, Style: cell.Style}
		}
		if cur != nil {
			runs = append(runs, *cur)
		}
	}
	return runs
}
