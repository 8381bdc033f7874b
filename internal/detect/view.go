package detect

import (
	"strings"
	"unicode"

	"github.com/patrick-goecommerce/terminal-mcp/internal/vt"
)

// GridView is a read-only snapshot of a grid's cells, plus the
// soft-wrap-joined logical lines used by the Menu detector. Detectors
// never mutate it.
type GridView struct {
	dims   vt.Dimensions
	cells  [][]vt.Cell
	cursor vt.Position
	lines  []string // plain text per physical row, soft-wrap joined lines tracked separately
	// joined maps a starting row to the full joined text when that row
	// begins a soft-wrapped run; rows that are continuations are absent.
	joinedFrom map[int]string
	joinedLen  map[int]int // number of physical rows consumed by the joined line starting at this row
}

func newGridView(g *vt.Grid) *GridView {
	cells := g.Snapshot()
	dims := g.Dimensions()
	v := &GridView{dims: dims, cells: cells, cursor: g.Cursor()}
	v.lines = make([]string, dims.Rows)
	for r := range cells {
		v.lines[r] = rowText(cells[r])
	}
	v.computeSoftWrapJoins()
	return v
}

func rowText(row []vt.Cell) string {
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
	return b.String()
}

// computeSoftWrapJoins joins lines ending in a soft wrap (content in the
// rightmost column continuing to column 0 of the next row) per spec.md
// §4.3's Menu detector contract: "lines ending in a soft-wrap ... are
// joined" before detection.
func (v *GridView) computeSoftWrapJoins() {
	v.joinedFrom = make(map[int]string)
	v.joinedLen = make(map[int]int)
	consumed := make(map[int]bool)
	for r := 0; r < v.dims.Rows; r++ {
		if consumed[r] {
			continue
		}
		text := strings.TrimRight(v.lines[r], " ")
		rows := 1
		cur := r
		for v.rightmostNonBlank(cur) && cur+1 < v.dims.Rows {
			next := strings.TrimRight(v.lines[cur+1], " ")
			text += next
			consumed[cur+1] = true
			cur++
			rows++
		}
		v.joinedFrom[r] = text
		v.joinedLen[r] = rows
	}
}

func (v *GridView) rightmostNonBlank(row int) bool {
	if row < 0 || row >= v.dims.Rows || v.dims.Cols == 0 {
		return false
	}
	c := v.cells[row][v.dims.Cols-1]
	return !c.WideTail && c.Character != 0 && c.Character != ' '
}

// RawLineAt returns the full-width plain text of a physical row,
// without trimming trailing spaces — needed by detectors (Table) that
// care about column alignment past the last visible character.
func (v *GridView) RawLineAt(r int) string {
	if r < 0 || r >= v.dims.Rows {
		return ""
	}
	return v.lines[r]
}

// LineAt returns the plain text of the physical row, trailing spaces
// trimmed.
func (v *GridView) LineAt(r int) string {
	if r < 0 || r >= v.dims.Rows {
		return ""
	}
	return strings.TrimRight(v.lines[r], " ")
}

// JoinedLineAt returns the soft-wrap-joined logical line starting at
// row r, and how many physical rows it spans. If row r is itself a
// continuation of an earlier joined line, ok is false.
func (v *GridView) JoinedLineAt(r int) (text string, rowSpan int, ok bool) {
	t, present := v.joinedFrom[r]
	if !present {
		return "", 0, false
	}
	return t, v.joinedLen[r], true
}

// Dimensions returns the view's grid dimensions.
func (v *GridView) Dimensions() vt.Dimensions { return v.dims }

// Cell returns the cell at (r,c), or a blank cell out of bounds.
func (v *GridView) Cell(r, c int) vt.Cell {
	if r < 0 || r >= v.dims.Rows || c < 0 || c >= v.dims.Cols {
		return vt.BlankCell
	}
	return v.cells[r][c]
}

// NonSpaceRatio returns the number of non-blank cells in a row (wide
// character tails not counted) divided by the grid's column count.
func (v *GridView) NonSpaceRatio(r int) float64 {
	if r < 0 || r >= v.dims.Rows || v.dims.Cols == 0 {
		return 0
	}
	n := 0
	for _, c := range v.cells[r] {
		if c.WideTail {
			continue
		}
		if c.Character != 0 && c.Character != ' ' {
			n++
		}
	}
	return float64(n) / float64(v.dims.Cols)
}

// RowHasUniformNonDefaultBG reports whether every non-blank cell in a
// row shares one non-default background color, returning it.
func (v *GridView) RowHasUniformNonDefaultBG(r int) (vt.Color, bool) {
	if r < 0 || r >= v.dims.Rows {
		return vt.DefaultColor, false
	}
	var found vt.Color
	has := false
	for _, c := range v.cells[r] {
		if c.WideTail || c.Character == 0 || c.Character == ' ' {
			continue
		}
		if c.BG.Kind == vt.ColorDefault {
			return vt.DefaultColor, false
		}
		if !has {
			found = c.BG
			has = true
			continue
		}
		if found != c.BG {
			return vt.DefaultColor, false
		}
	}
	return found, has
}

// RowStyleUniform reports whether every non-blank cell in the row has
// the given style flag set.
func (v *GridView) RowStyleUniform(r int, flag vt.StyleFlags) bool {
	if r < 0 || r >= v.dims.Rows {
		return false
	}
	any := false
	for _, c := range v.cells[r] {
		if c.WideTail || c.Character == 0 || c.Character == ' ' {
			continue
		}
		any = true
		if !c.Style.Has(flag) {
			return false
		}
	}
	return any
}

// isBoxDrawing reports whether r is a box-drawing character (U+2500 -
// U+257F) or one of the ASCII border characters '+', '-', '|'.
func isBoxDrawing(r rune) bool {
	if r >= 0x2500 && r <= 0x257F {
		return true
	}
	switch r {
	case '+', '-', '|':
		return true
	}
	return false
}

func isHorizontalRule(r rune) bool {
	switch r {
	case '─', '-', '=':
		return true
	}
	return false
}

func visibleLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

func isPunctNoSpace(r rune) bool {
	return unicode.IsPunct(r) && r != ' '
}
