package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrick-goecommerce/terminal-mcp/internal/vt"
)

// writeRow writes s onto row r starting at column 0 with the default pen.
func writeRow(g *vt.Grid, r int, s string) {
	g.CursorMove(r, 0)
	for _, ch := range s {
		g.Put(ch)
	}
}

// writeRowStyled writes s onto row r with the given style flags set on
// every written cell.
func writeRowStyled(g *vt.Grid, r int, s string, style vt.StyleFlags) {
	pen := g.GetPen()
	g.SetPen(vt.Pen{FG: pen.FG, BG: pen.BG, Style: style})
	writeRow(g, r, s)
	g.SetPen(pen)
}

func TestEngine_EmptyGridYieldsEmptyNonNilSlice(t *testing.T) {
	g := vt.NewGrid(10, 40)
	elems := NewEngine().Detect(g)
	require.NotNil(t, elems)
	assert.Empty(t, elems)
}

func TestEngine_MenuDetection(t *testing.T) {
	g := vt.NewGrid(6, 40)
	writeRow(g, 0, "Select an option:")
	writeRow(g, 1, "> Start")
	writeRow(g, 2, "  Stop")
	writeRow(g, 3, "  Restart")

	elems := NewEngine().Detect(g)
	var menus []Element
	for _, e := range elems {
		if e.Type == TypeMenu {
			menus = append(menus, e)
		}
	}
	require.Len(t, menus, 1)
	m := menus[0]
	assert.Equal(t, "menu1", m.RefID)
	items, ok := m.Attributes["items"].([]string)
	require.True(t, ok)
	require.Len(t, items, 3)
	assert.Equal(t, "Start", items[0])
	assert.Equal(t, "Stop", items[1])
	assert.Equal(t, "Restart", items[2])
	assert.Equal(t, 0, m.Attributes["selected_index"])
}

func TestEngine_MenuDetection_EmitsAddressableMenuItems(t *testing.T) {
	g := vt.NewGrid(6, 40)
	writeRow(g, 0, "Select an option:")
	writeRow(g, 1, "> Start")
	writeRow(g, 2, "  Stop")
	writeRow(g, 3, "  Restart")

	elems := NewEngine().Detect(g)
	var items []Element
	for _, e := range elems {
		if e.Type == TypeMenuItem {
			items = append(items, e)
		}
	}
	require.Len(t, items, 3)
	assert.Equal(t, "item1", items[0].RefID)
	assert.Equal(t, "item2", items[1].RefID)
	assert.Equal(t, "item3", items[2].RefID)
	assert.Equal(t, "Start", items[0].Text)
	assert.Equal(t, true, items[0].Attributes["selected"])
	assert.Equal(t, false, items[1].Attributes["selected"])
	assert.Equal(t, false, items[2].Attributes["selected"])
}

func TestEngine_ButtonExcludesParentheticalFragment(t *testing.T) {
	g := vt.NewGrid(4, 40)
	writeRow(g, 0, "user@host (main) $")
	writeRow(g, 1, "[ OK ]")

	elems := NewEngine().Detect(g)
	var buttons []Element
	for _, e := range elems {
		if e.Type == TypeButton {
			buttons = append(buttons, e)
		}
	}
	require.Len(t, buttons, 1)
	assert.Equal(t, "OK", buttons[0].Attributes["label"])
}

func TestEngine_ProgressBarPercent(t *testing.T) {
	g := vt.NewGrid(4, 40)
	writeRow(g, 0, "████████░░░░░░░░░░░░")

	elems := NewEngine().Detect(g)
	var bars []Element
	for _, e := range elems {
		if e.Type == TypeProgress {
			bars = append(bars, e)
		}
	}
	require.Len(t, bars, 1)
	assert.Equal(t, 40, bars[0].Attributes["percent"])
}

func TestEngine_BorderRetainsChildren(t *testing.T) {
	g := vt.NewGrid(6, 30)
	writeRow(g, 0, "+----------------------+")
	writeRow(g, 1, "|                      |")
	writeRow(g, 2, "| [x] Remember me      |")
	writeRow(g, 3, "|                      |")
	writeRow(g, 4, "+----------------------+")

	elems := NewEngine().Detect(g)
	var borders, checkboxes []Element
	for _, e := range elems {
		switch e.Type {
		case TypeBorder:
			borders = append(borders, e)
		case TypeCheckbox:
			checkboxes = append(checkboxes, e)
		}
	}
	require.Len(t, borders, 1)
	require.Len(t, checkboxes, 1)
	assert.True(t, borders[0].Region.Contains(checkboxes[0].Region.TopLeft))
}

func TestEngine_RefIDsUniqueAndRegionsNonOverlapping(t *testing.T) {
	g := vt.NewGrid(10, 40)
	writeRow(g, 0, "+--------------------+")
	writeRow(g, 1, "| > A                |")
	writeRow(g, 2, "|   B                |")
	writeRow(g, 3, "+--------------------+")
	writeRow(g, 5, "[ Submit ]  [ Cancel ]")
	writeRow(g, 7, "████░░░░")

	elems := NewEngine().Detect(g)
	seen := make(map[string]bool)
	for i, e := range elems {
		require.NotEmpty(t, e.RefID)
		assert.False(t, seen[e.RefID], "duplicate ref_id %s", e.RefID)
		seen[e.RefID] = true
		for j, other := range elems {
			if i == j {
				continue
			}
			if e.Type == TypeBorder || other.Type == TypeBorder {
				continue
			}
			if e.Type == TypeMenu || other.Type == TypeMenu {
				continue
			}
			assert.False(t, e.Region.Overlaps(other.Region), "%s overlaps %s", e.RefID, other.RefID)
		}
	}
}

func TestEngine_ReadingOrder(t *testing.T) {
	g := vt.NewGrid(10, 40)
	writeRow(g, 0, "[ First ]")
	writeRow(g, 5, "[ Second ]")

	elems := NewEngine().Detect(g)
	require.Len(t, elems, 2)
	assert.Equal(t, "First", elems[0].Attributes["label"])
	assert.Equal(t, "Second", elems[1].Attributes["label"])
}

func TestCheckboxDetector_CheckedAndUnchecked(t *testing.T) {
	g := vt.NewGrid(4, 40)
	writeRow(g, 0, "[x] Enable logging")
	writeRow(g, 1, "[ ] Enable verbose")

	elems := (&CheckboxDetector{}).Detect(newGridView(g))
	require.Len(t, elems, 2)
	assert.Equal(t, true, elems[0].Attributes["checked"])
	assert.Equal(t, "Enable logging", elems[0].Attributes["label"])
	assert.Equal(t, false, elems[1].Attributes["checked"])
	assert.Equal(t, "Enable verbose", elems[1].Attributes["label"])
}

func TestStatusBarDetector_TopAndBottomRow(t *testing.T) {
	g := vt.NewGrid(5, 40)
	writeRowStyled(g, 0, "STATUS:CONNECTED|BATTERY:87%|TIME:12:45", vt.StyleReverse)
	writeRow(g, 1, "content line")
	writeRowStyled(g, 4, "Q:QUIT|?:HELP|TAB:SWITCH|ESC:CANCEL", vt.StyleReverse)

	elems := (&StatusBarDetector{}).Detect(newGridView(g))
	require.Len(t, elems, 2)
	assert.Equal(t, 0, elems[0].Region.TopLeft.Row)
	assert.Equal(t, 4, elems[1].Region.TopLeft.Row)
}

func TestTableDetector_HeaderAndRows(t *testing.T) {
	g := vt.NewGrid(5, 40)
	writeRowStyled(g, 0, "Name       Age  City", vt.StyleBold)
	writeRow(g, 1, "Alice      30   Boston")
	writeRow(g, 2, "Bob        25   Seattle")

	elems := (&TableDetector{}).Detect(newGridView(g))
	require.Len(t, elems, 1)
	headers, ok := elems[0].Attributes["headers"].([]string)
	require.True(t, ok)
	assert.Equal(t, []string{"Name", "Age", "City"}, headers)
	rows, ok := elems[0].Attributes["rows"].([][]string)
	require.True(t, ok)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Alice", "30", "Boston"}, rows[0])
}

func TestInputDetector_BracketedField(t *testing.T) {
	g := vt.NewGrid(4, 40)
	writeRow(g, 0, "Username: [jdoe]")

	elems := (&InputDetector{}).Detect(newGridView(g))
	require.Len(t, elems, 1)
	assert.Equal(t, "jdoe", elems[0].Attributes["value"])
}
