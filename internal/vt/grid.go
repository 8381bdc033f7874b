package vt

import "github.com/mattn/go-runewidth"

// bufferID selects which of the two screen buffers is active.
type bufferID int

const (
	bufPrimary bufferID = iota
	bufAlternate
)

// Grid is the in-memory terminal screen: two cell buffers (primary and
// alternate), cursor state, scroll region, tab stops, and private-mode
// flags. It owns no I/O; the parser/handler in this package mutates it,
// the session layer resizes it, and detectors take read-only borrows.
type Grid struct {
	dims Dimensions

	buffers  [2][][]Cell
	active   bufferID
	altSaved Pen // pen preserved across a switch into the alternate buffer

	cursor     Position
	savedCur   Position
	savedPen   Pen
	cursorVis  bool
	autowrap   bool
	pendingWrap bool // true after writing the last column, before the next glyph

	pen Pen

	scrollTop    int // inclusive, 0-based
	scrollBottom int // inclusive, 0-based

	tabStops []bool

	title string
}

// NewGrid allocates a Grid of the given dimensions with default state:
// autowrap on, cursor visible, full-screen scroll region, tabs every 8
// columns, cursor at (0,0).
func NewGrid(rows, cols int) *Grid {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	g := &Grid{
		dims:         Dimensions{Rows: rows, Cols: cols},
		autowrap:     true,
		cursorVis:    true,
		pen:          DefaultPen,
		scrollTop:    0,
		scrollBottom: rows - 1,
	}
	g.buffers[bufPrimary] = makeRows(rows, cols)
	g.buffers[bufAlternate] = makeRows(rows, cols)
	g.resetTabStops()
	return g
}

func makeRows(rows, cols int) [][]Cell {
	buf := make([][]Cell, rows)
	for r := range buf {
		buf[r] = make([]Cell, cols)
		for c := range buf[r] {
			buf[r][c] = BlankCell
		}
	}
	return buf
}

func (g *Grid) resetTabStops() {
	g.tabStops = make([]bool, g.dims.Cols)
	for c := 0; c < g.dims.Cols; c += 8 {
		g.tabStops[c] = true
	}
}

// Dimensions returns the grid's current size.
func (g *Grid) Dimensions() Dimensions { return g.dims }

// Cursor returns the current cursor position.
func (g *Grid) Cursor() Position { return g.cursor }

// CursorVisible reports whether the cursor should be rendered (DECTCEM).
func (g *Grid) CursorVisible() bool { return g.cursorVis }

// Title returns the most recent OSC 0/1/2 window title.
func (g *Grid) Title() string { return g.title }

// GetPen returns the current drawing attributes.
func (g *Grid) GetPen() Pen { return g.pen }

// InAlternateScreen reports whether the alternate buffer is active.
func (g *Grid) InAlternateScreen() bool { return g.active == bufAlternate }

func (g *Grid) rows() [][]Cell { return g.buffers[g.active] }

// Cell returns the cell at (r, c). Out-of-bounds positions return a
// blank cell.
func (g *Grid) Cell(r, c int) Cell {
	if r < 0 || r >= g.dims.Rows || c < 0 || c >= g.dims.Cols {
		return BlankCell
	}
	return g.rows()[r][c]
}

// Snapshot returns a deep copy of the active buffer's rows, suitable for
// handing to detectors as an immutable view.
func (g *Grid) Snapshot() [][]Cell {
	src := g.rows()
	out := make([][]Cell, len(src))
	for i, row := range src {
		out[i] = append([]Cell(nil), row...)
	}
	return out
}

func (g *Grid) cellMut(r, c int) *Cell {
	return &g.rows()[r][c]
}

// clampCursor clamps the cursor into bounds after any mutation.
func (g *Grid) clampCursor() {
	if g.cursor.Row < 0 {
		g.cursor.Row = 0
	}
	if g.cursor.Row >= g.dims.Rows {
		g.cursor.Row = g.dims.Rows - 1
	}
	if g.cursor.Col < 0 {
		g.cursor.Col = 0
	}
	if g.cursor.Col >= g.dims.Cols {
		g.cursor.Col = g.dims.Cols - 1
	}
	g.pendingWrap = false
}

// CursorMove sets the cursor to (r, c), clamped to the grid.
func (g *Grid) CursorMove(r, c int) {
	g.cursor = Position{Row: r, Col: c}
	g.clampCursor()
}

// Resize changes the grid's dimensions, preserving as many top rows and
// leftmost columns of content as fit, clamping the cursor, intersecting
// the scroll region with the new bounds, and retaining the pen.
func (g *Grid) Resize(rows, cols int) {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	for b := bufferID(0); b < 2; b++ {
		old := g.buffers[b]
		next := makeRows(rows, cols)
		for r := 0; r < rows && r < len(old); r++ {
			copy(next[r], old[r])
		}
		g.buffers[b] = next
	}
	g.dims = Dimensions{Rows: rows, Cols: cols}
	g.resetTabStops()
	if g.scrollBottom >= rows {
		g.scrollBottom = rows - 1
	}
	if g.scrollTop > g.scrollBottom {
		g.scrollTop = 0
	}
	g.clampCursor()
}

// SetScrollRegion sets the scroll region (0-based, inclusive). Invalid
// regions (top>=bottom or out of range) are ignored.
func (g *Grid) SetScrollRegion(top, bottom int) {
	if top < 0 {
		top = 0
	}
	if bottom >= g.dims.Rows {
		bottom = g.dims.Rows - 1
	}
	if top >= bottom {
		return
	}
	g.scrollTop = top
	g.scrollBottom = bottom
}

// ScrollRegion returns the current (top, bottom) inclusive scroll region.
func (g *Grid) ScrollRegion() (int, int) { return g.scrollTop, g.scrollBottom }

// SetPen replaces the current drawing attributes.
func (g *Grid) SetPen(p Pen) { g.pen = p }

// SetAutowrap toggles DECAWM (mode ?7).
func (g *Grid) SetAutowrap(on bool) { g.autowrap = on }

// Autowrap reports the current DECAWM state.
func (g *Grid) Autowrap() bool { return g.autowrap }

// SetCursorVisible toggles DECTCEM (mode ?25).
func (g *Grid) SetCursorVisible(on bool) { g.cursorVis = on }

// SetTitle records an OSC 0/1/2 window title.
func (g *Grid) SetTitle(t string) { g.title = t }

// SaveCursor stores the cursor position and pen (DECSC / CSI s).
func (g *Grid) SaveCursor() {
	g.savedCur = g.cursor
	g.savedPen = g.pen
}

// RestoreCursor restores a previously saved cursor position and pen
// (DECRC / CSI u).
func (g *Grid) RestoreCursor() {
	g.cursor = g.savedCur
	g.pen = g.savedPen
	g.clampCursor()
}

// SwitchBuffer selects the primary or alternate buffer. Entering the
// alternate buffer preserves cursor and pen but clears the alternate
// screen; leaving it discards whatever was drawn there.
func (g *Grid) SwitchBuffer(alternate bool) {
	target := bufPrimary
	if alternate {
		target = bufAlternate
	}
	if target == g.active {
		return
	}
	if target == bufAlternate {
		g.buffers[bufAlternate] = makeRows(g.dims.Rows, g.dims.Cols)
	}
	g.active = target
}

// Put writes ch at the cursor using the current pen, advances the
// cursor, wrapping to the next line if autowrap is enabled (or
// overwriting the last column if not), and scrolls the scroll region
// when the cursor would pass its bottom. Wide characters occupy two
// cells; the second is a WideTail sentinel.
func (g *Grid) Put(ch rune) {
	width := runewidth.RuneWidth(ch)
	if width <= 0 {
		width = 1
	}
	if g.pendingWrap {
		g.wrapLine()
	}
	row := g.cursor.Row
	col := g.cursor.Col
	if col+width > g.dims.Cols {
		if g.autowrap {
			g.wrapLine()
			row = g.cursor.Row
			col = g.cursor.Col
		} else {
			col = g.dims.Cols - width
			if col < 0 {
				col = 0
			}
		}
	}
	cell := Cell{Character: ch, FG: g.pen.FG, BG: g.pen.BG, Style: g.pen.Style}
	*g.cellMut(row, col) = cell
	if width == 2 && col+1 < g.dims.Cols {
		*g.cellMut(row, col+1) = Cell{WideTail: true, FG: g.pen.FG, BG: g.pen.BG, Style: g.pen.Style}
	}
	g.cursor.Row = row
	g.cursor.Col = col + width
	if g.cursor.Col >= g.dims.Cols {
		g.cursor.Col = g.dims.Cols - 1
		if g.autowrap {
			g.pendingWrap = true
		}
	}
}

// wrapLine moves the cursor to column 0 of the next line, scrolling if
// the cursor is already at the bottom of the scroll region.
func (g *Grid) wrapLine() {
	g.pendingWrap = false
	g.cursor.Col = 0
	if g.cursor.Row == g.scrollBottom {
		g.ScrollUp(1)
	} else if g.cursor.Row < g.dims.Rows-1 {
		g.cursor.Row++
	}
}

// LineFeed moves the cursor down one line (scrolling within the scroll
// region if at its bottom) without touching the column — used for LF,
// VT, FF, and IND.
func (g *Grid) LineFeed() {
	g.pendingWrap = false
	if g.cursor.Row == g.scrollBottom {
		g.ScrollUp(1)
	} else if g.cursor.Row < g.dims.Rows-1 {
		g.cursor.Row++
	}
}

// ReverseLineFeed moves the cursor up one line (scrolling down within
// the scroll region if at its top) — used for RI.
func (g *Grid) ReverseLineFeed() {
	g.pendingWrap = false
	if g.cursor.Row == g.scrollTop {
		g.ScrollDown(1)
	} else if g.cursor.Row > 0 {
		g.cursor.Row--
	}
}

// CarriageReturn moves the cursor to column 0.
func (g *Grid) CarriageReturn() {
	g.pendingWrap = false
	g.cursor.Col = 0
}

// Backspace moves the cursor left one column, stopping at column 0.
func (g *Grid) Backspace() {
	g.pendingWrap = false
	if g.cursor.Col > 0 {
		g.cursor.Col--
	}
}

// Tab advances the cursor to the next tab stop, or the last column if
// none remain.
func (g *Grid) Tab() {
	for c := g.cursor.Col + 1; c < g.dims.Cols; c++ {
		if g.tabStops[c] {
			g.cursor.Col = c
			return
		}
	}
	g.cursor.Col = g.dims.Cols - 1
}

// ScrollUp shifts n lines of the scroll region up, discarding lines that
// leave the top of the region (no scrollback is retained) and filling
// the vacated bottom lines with blanks at the current pen.
func (g *Grid) ScrollUp(n int) {
	g.scrollRegionShift(n, true)
}

// ScrollDown shifts n lines of the scroll region down, discarding lines
// that leave the bottom of the region and filling the vacated top lines
// with blanks.
func (g *Grid) ScrollDown(n int) {
	g.scrollRegionShift(n, false)
}

func (g *Grid) scrollRegionShift(n int, up bool) {
	if n <= 0 {
		return
	}
	rows := g.rows()
	top, bottom := g.scrollTop, g.scrollBottom
	height := bottom - top + 1
	if n > height {
		n = height
	}
	blank := blankWithPen(g.pen)
	if up {
		for r := top; r <= bottom-n; r++ {
			copy(rows[r], rows[r+n])
		}
		for r := bottom - n + 1; r <= bottom; r++ {
			fillRow(rows[r], blank)
		}
	} else {
		for r := bottom; r >= top+n; r-- {
			copy(rows[r], rows[r-n])
		}
		for r := top; r < top+n; r++ {
			fillRow(rows[r], blank)
		}
	}
}

func fillRow(row []Cell, blank Cell) {
	for i := range row {
		row[i] = blank
	}
}

// Clear erases the display according to mode. EraseScrollback is a no-op
// since this grid keeps none.
func (g *Grid) Clear(mode EraseMode) {
	blank := blankWithPen(g.pen)
	rows := g.rows()
	switch mode {
	case EraseFromCursor:
		fillRow(rows[g.cursor.Row][g.cursor.Col:], blank)
		for r := g.cursor.Row + 1; r < g.dims.Rows; r++ {
			fillRow(rows[r], blank)
		}
	case EraseToCursor:
		for r := 0; r < g.cursor.Row; r++ {
			fillRow(rows[r], blank)
		}
		fillRow(rows[g.cursor.Row][:g.cursor.Col+1], blank)
	case EraseAll:
		for r := 0; r < g.dims.Rows; r++ {
			fillRow(rows[r], blank)
		}
	case EraseScrollback:
		// no scrollback kept; nothing to do
	}
}

// EraseLine erases the current line according to mode.
func (g *Grid) EraseLine(mode EraseMode) {
	blank := blankWithPen(g.pen)
	row := g.rows()[g.cursor.Row]
	switch mode {
	case EraseFromCursor:
		fillRow(row[g.cursor.Col:], blank)
	case EraseToCursor:
		fillRow(row[:g.cursor.Col+1], blank)
	case EraseAll:
		fillRow(row, blank)
	}
}

// InsertLines inserts n blank lines at the cursor row within the scroll
// region, pushing lines below down and off the bottom of the region.
func (g *Grid) InsertLines(n int) {
	if g.cursor.Row < g.scrollTop || g.cursor.Row > g.scrollBottom {
		return
	}
	oldTop := g.scrollTop
	g.scrollTop = g.cursor.Row
	g.ScrollDown(n)
	g.scrollTop = oldTop
}

// DeleteLines deletes n lines at the cursor row within the scroll
// region, pulling lines below up and filling the bottom with blanks.
func (g *Grid) DeleteLines(n int) {
	if g.cursor.Row < g.scrollTop || g.cursor.Row > g.scrollBottom {
		return
	}
	oldTop := g.scrollTop
	g.scrollTop = g.cursor.Row
	g.ScrollUp(n)
	g.scrollTop = oldTop
}

// InsertChars inserts n blank characters at the cursor column, shifting
// the remainder of the line right and discarding overflow.
func (g *Grid) InsertChars(n int) {
	row := g.rows()[g.cursor.Row]
	blank := blankWithPen(g.pen)
	c := g.cursor.Col
	if n > len(row)-c {
		n = len(row) - c
	}
	copy(row[c+n:], row[c:len(row)-n])
	fillRow(row[c:c+n], blank)
}

// DeleteChars deletes n characters at the cursor column, shifting the
// remainder of the line left and filling the vacated tail with blanks.
func (g *Grid) DeleteChars(n int) {
	row := g.rows()[g.cursor.Row]
	blank := blankWithPen(g.pen)
	c := g.cursor.Col
	if n > len(row)-c {
		n = len(row) - c
	}
	copy(row[c:], row[c+n:])
	fillRow(row[len(row)-n:], blank)
}

// EraseChars erases n characters starting at the cursor column in
// place (no shifting), using the current pen's background.
func (g *Grid) EraseChars(n int) {
	row := g.rows()[g.cursor.Row]
	blank := blankWithPen(g.pen)
	c := g.cursor.Col
	end := c + n
	if end > len(row) {
		end = len(row)
	}
	fillRow(row[c:end], blank)
}
