package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrick-goecommerce/terminal-mcp/internal/detect"
	"github.com/patrick-goecommerce/terminal-mcp/internal/vt"
)

func region(row, col, rows, cols int) vt.Region {
	return vt.Region{TopLeft: vt.Position{Row: row, Col: col}, Dimensions: vt.Dimensions{Rows: rows, Cols: cols}}
}

func TestSynthesizeClick_MouseStrategyWhenReportingEnabled(t *testing.T) {
	elems := []detect.Element{
		{RefID: "btn1", Type: detect.TypeButton, Region: region(2, 4, 1, 6)},
	}
	b, res, err := synthesizeClick(elems, "btn1", true, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "mouse", res.Strategy)
	assert.Contains(t, string(b), "\x1b[<0;")
}

func TestSynthesizeClick_UnknownRefReturnsError(t *testing.T) {
	_, _, err := synthesizeClick(nil, "nope", false, 0, 0)
	assert.Error(t, err)
}

func TestSynthesizeClick_ButtonTabNavigatesWhenNotFirst(t *testing.T) {
	elems := []detect.Element{
		{RefID: "btn1", Type: detect.TypeButton, Region: region(5, 0, 1, 4)},
		{RefID: "btn2", Type: detect.TypeButton, Region: region(5, 10, 1, 4)},
	}
	b, res, err := synthesizeClick(elems, "btn2", false, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "tab_navigate", res.Strategy)
	assert.Equal(t, []byte{'\t', '\r'}, b)
}

func TestSynthesizeClick_FirstButtonPressesEnterOnly(t *testing.T) {
	elems := []detect.Element{
		{RefID: "btn1", Type: detect.TypeButton, Region: region(5, 0, 1, 4)},
	}
	b, res, err := synthesizeClick(elems, "btn1", false, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "enter", res.Strategy)
	assert.Equal(t, []byte{'\r'}, b)
}

func TestSynthesizeClick_MenuItemArrowNavigates(t *testing.T) {
	elems := []detect.Element{
		{RefID: "item1", Type: detect.TypeMenuItem, Region: region(0, 0, 1, 6), Attributes: map[string]any{"selected": true}},
		{RefID: "item2", Type: detect.TypeMenuItem, Region: region(1, 0, 1, 6)},
		{RefID: "item3", Type: detect.TypeMenuItem, Region: region(2, 0, 1, 6)},
	}
	b, res, err := synthesizeClick(elems, "item3", false, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "arrow_navigate", res.Strategy)
	assert.Equal(t, []byte{0x1b, '[', 'B', 0x1b, '[', 'B', '\r'}, b)
}

// TestSynthesizeClick_MenuItemArrowNavigates_RealDetection runs an actual
// grid through detect.Engine.Detect instead of hand-built fixtures, so a
// regression where MenuDetector stops emitting addressable MenuItem
// elements (making every Menu click degrade to the bare-Enter fallback)
// would fail here even if the fixture-based test above still passed.
func TestSynthesizeClick_MenuItemArrowNavigates_RealDetection(t *testing.T) {
	g := vt.NewGrid(6, 40)
	g.CursorMove(0, 0)
	for _, ch := range "> Start" {
		g.Put(ch)
	}
	g.CursorMove(1, 0)
	for _, ch := range "  Stop" {
		g.Put(ch)
	}
	g.CursorMove(2, 0)
	for _, ch := range "  Restart" {
		g.Put(ch)
	}

	elems := detect.NewEngine().Detect(g)
	var items []detect.Element
	for _, e := range elems {
		if e.Type == detect.TypeMenuItem {
			items = append(items, e)
		}
	}
	require.Len(t, items, 3)

	b, res, err := synthesizeClick(elems, items[2].RefID, false, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "arrow_navigate", res.Strategy)
	assert.Equal(t, []byte{0x1b, '[', 'B', 0x1b, '[', 'B', '\r'}, b)
}
