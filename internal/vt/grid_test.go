package vt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid_Dimensions(t *testing.T) {
	g := NewGrid(24, 80)
	assert.Equal(t, Dimensions{Rows: 24, Cols: 80}, g.Dimensions())
	assert.Equal(t, Position{}, g.Cursor())
}

func TestNewGrid_BlankCells(t *testing.T) {
	g := NewGrid(3, 4)
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			assert.Equal(t, rune(' '), g.Cell(r, c).Character)
		}
	}
}

func TestCell_OutOfBounds(t *testing.T) {
	g := NewGrid(3, 3)
	assert.Equal(t, BlankCell, g.Cell(-1, 0))
	assert.Equal(t, BlankCell, g.Cell(99, 0))
	assert.Equal(t, BlankCell, g.Cell(0, 99))
}

func TestPut_AdvancesCursor(t *testing.T) {
	g := NewGrid(5, 10)
	g.Put('h')
	g.Put('i')
	require.Equal(t, Position{Row: 0, Col: 2}, g.Cursor())
	assert.Equal(t, rune('h'), g.Cell(0, 0).Character)
	assert.Equal(t, rune('i'), g.Cell(0, 1).Character)
}

func TestPut_AutowrapOn(t *testing.T) {
	g := NewGrid(3, 5)
	for i := 0; i < 6; i++ { // cols+1 printable chars
		g.Put(rune('a' + i))
	}
	assert.Equal(t, rune('f'), g.Cell(1, 0).Character)
	assert.Equal(t, Position{Row: 1, Col: 1}, g.Cursor())
}

func TestPut_AutowrapOff(t *testing.T) {
	g := NewGrid(3, 5)
	g.SetAutowrap(false)
	for i := 0; i < 6; i++ {
		g.Put(rune('a' + i))
	}
	assert.Equal(t, rune('f'), g.Cell(0, 4).Character)
	assert.Equal(t, 0, g.Cursor().Row)
}

func TestResize_PreservesTopLeftContent(t *testing.T) {
	g := NewGrid(5, 10)
	g.Put('X')
	g.CursorMove(4, 9)
	g.Resize(3, 4)
	assert.Equal(t, Dimensions{Rows: 3, Cols: 4}, g.Dimensions())
	assert.Equal(t, rune('X'), g.Cell(0, 0).Character)
	assert.Equal(t, Position{Row: 2, Col: 3}, g.Cursor())
}

func TestResize_IntersectsScrollRegion(t *testing.T) {
	g := NewGrid(10, 10)
	g.SetScrollRegion(2, 9)
	g.Resize(5, 10)
	top, bottom := g.ScrollRegion()
	assert.Equal(t, 2, top)
	assert.Equal(t, 4, bottom)
}

func TestScrollUp_DiscardsTopNoScrollback(t *testing.T) {
	g := NewGrid(3, 3)
	g.Put('A')
	g.CursorMove(1, 0)
	g.Put('B')
	g.CursorMove(2, 0)
	g.Put('C')
	g.ScrollUp(1)
	assert.Equal(t, rune('B'), g.Cell(0, 0).Character)
	assert.Equal(t, rune('C'), g.Cell(1, 0).Character)
	assert.Equal(t, rune(' '), g.Cell(2, 0).Character)
}

func TestScrollRegion_BoundsShiftOnly(t *testing.T) {
	g := NewGrid(5, 3)
	for r := 0; r < 5; r++ {
		g.CursorMove(r, 0)
		g.Put(rune('0' + r))
	}
	g.SetScrollRegion(1, 3)
	g.ScrollUp(1)
	// Row 0 and row 4 are outside the region and untouched.
	assert.Equal(t, rune('0'), g.Cell(0, 0).Character)
	assert.Equal(t, rune('4'), g.Cell(4, 0).Character)
	// Rows 1-3 shifted up by one within the region, row 3 blanked.
	assert.Equal(t, rune('2'), g.Cell(1, 0).Character)
	assert.Equal(t, rune(' '), g.Cell(3, 0).Character)
}

func TestAlternateScreen_Symmetric(t *testing.T) {
	g := NewGrid(3, 3)
	g.Put('X')
	before := g.Snapshot()
	g.SwitchBuffer(true)
	g.Put('Y')
	g.SwitchBuffer(false)
	after := g.Snapshot()
	assert.Equal(t, before, after)
}

func TestClear_AllYieldsBlankGridCursorUnaffected(t *testing.T) {
	g := NewGrid(3, 3)
	g.Put('A')
	g.CursorMove(0, 0)
	g.Clear(EraseAll)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			assert.Equal(t, rune(' '), g.Cell(r, c).Character)
		}
	}
	assert.Equal(t, Position{}, g.Cursor())
}

func TestSaveRestoreCursor(t *testing.T) {
	g := NewGrid(5, 5)
	g.CursorMove(2, 3)
	g.SaveCursor()
	g.CursorMove(0, 0)
	g.RestoreCursor()
	assert.Equal(t, Position{Row: 2, Col: 3}, g.Cursor())
}

func TestWideCharacterOccupiesTwoCells(t *testing.T) {
	g := NewGrid(2, 10)
	g.Put('世') // CJK wide rune
	assert.Equal(t, rune('世'), g.Cell(0, 0).Character)
	assert.True(t, g.Cell(0, 1).WideTail)
	assert.Equal(t, rune(0), g.Cell(0, 1).Character)
	assert.Equal(t, Position{Row: 0, Col: 2}, g.Cursor())
}

func TestIdenticalByteStreamsYieldIdenticalGrids(t *testing.T) {
	stream := []byte("\x1b[2J\x1b[1;1Hhello\x1b[31mworld\x1b[0m\r\n\tend")
	g1 := NewGrid(10, 20)
	g2 := NewGrid(10, 20)
	h1 := NewBasicHandler(g1, nil)
	h2 := NewBasicHandler(g2, nil)
	NewParser(h1).Advance(stream)
	NewParser(h2).Advance(stream)
	assert.Equal(t, g1.Snapshot(), g2.Snapshot())
	assert.Equal(t, g1.Cursor(), g2.Cursor())
}
