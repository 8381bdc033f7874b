package session

import (
	"fmt"
	"sort"

	"github.com/patrick-goecommerce/terminal-mcp/internal/detect"
)

// ClickResult reports which synthesis strategy click(id, ref_id) used, per
// spec.md §4.5's requirement that the chosen strategy be reported so
// callers can adapt.
type ClickResult struct {
	Strategy string // "mouse", "arrow_navigate", "tab_navigate", "enter"
	RefID    string
}

// synthesizeClick locates ref in elems and returns the raw bytes to write
// to the PTY to activate it, plus the strategy used. mouseEnabled reflects
// whether the child program has turned on mouse-tracking mode
// (vt.BasicHandler.MouseReportingEnabled), per the two-tier strategy
// spec.md §4.5 describes.
func synthesizeClick(elems []detect.Element, ref string, mouseEnabled bool, cursorRow, cursorCol int) ([]byte, ClickResult, error) {
	var target *detect.Element
	for i := range elems {
		if elems[i].RefID == ref {
			target = &elems[i]
			break
		}
	}
	if target == nil {
		return nil, ClickResult{}, fmt.Errorf("unknown ref_id %q", ref)
	}

	if mouseEnabled {
		row := target.Region.TopLeft.Row + target.Region.Dimensions.Rows/2
		col := target.Region.TopLeft.Col + target.Region.Dimensions.Cols/2
		return mouseClickBytes(row, col), ClickResult{Strategy: "mouse", RefID: ref}, nil
	}

	switch target.Type {
	case detect.TypeMenuItem, detect.TypeMenu:
		return arrowNavigateBytes(elems, *target, cursorRow)
	case detect.TypeButton:
		return tabOrEnterBytes(elems, *target)
	default:
		return []byte{'\r'}, ClickResult{Strategy: "enter", RefID: ref}, nil
	}
}

// mouseClickBytes encodes an SGR-extended mouse click (CSI < … M) at the
// given 0-indexed row/col, falling back to the classic X10 form's
// 1-indexed byte encoding is unnecessary since SGR mode (1006) has no
// 223-column ceiling and is what modern full-screen TUIs negotiate.
func mouseClickBytes(row, col int) []byte {
	// button 0 = left button, press then release, 1-indexed coordinates.
	press := fmt.Sprintf("\x1b[<0;%d;%dM", col+1, row+1)
	release := fmt.Sprintf("\x1b[<0;%d;%dm", col+1, row+1)
	return []byte(press + release)
}

// arrowNavigateBytes moves selection from the element bearing
// selected=true toward the target menu item's index, then presses Enter.
func arrowNavigateBytes(elems []detect.Element, target detect.Element, _ int) ([]byte, ClickResult, error) {
	var siblings []detect.Element
	for _, e := range elems {
		if e.Type == detect.TypeMenuItem {
			siblings = append(siblings, e)
		}
	}
	sort.Slice(siblings, func(i, j int) bool {
		if siblings[i].Region.TopLeft.Row != siblings[j].Region.TopLeft.Row {
			return siblings[i].Region.TopLeft.Row < siblings[j].Region.TopLeft.Row
		}
		return siblings[i].Region.TopLeft.Col < siblings[j].Region.TopLeft.Col
	})

	targetIdx, currentIdx := -1, -1
	for i, e := range siblings {
		if e.RefID == target.RefID {
			targetIdx = i
		}
		if sel, ok := e.Attributes["selected"].(bool); ok && sel {
			currentIdx = i
		}
	}
	if targetIdx == -1 {
		// The element itself may be the container; fall back to Enter.
		return []byte{'\r'}, ClickResult{Strategy: "enter", RefID: target.RefID}, nil
	}
	if currentIdx == -1 {
		currentIdx = 0
	}

	var out []byte
	delta := targetIdx - currentIdx
	step := []byte{0x1b, '[', 'B'} // Down
	if delta < 0 {
		step = []byte{0x1b, '[', 'A'} // Up
		delta = -delta
	}
	for i := 0; i < delta; i++ {
		out = append(out, step...)
	}
	out = append(out, '\r')
	return out, ClickResult{Strategy: "arrow_navigate", RefID: target.RefID}, nil
}

// tabOrEnterBytes navigates to a button by tab-order index among Buttons
// in reading order, best-effort per spec.md §4.5's Open Question (c): if
// no other button precedes it, assume it is already focused and just
// press Enter.
func tabOrEnterBytes(elems []detect.Element, target detect.Element) ([]byte, ClickResult, error) {
	var buttons []detect.Element
	for _, e := range elems {
		if e.Type == detect.TypeButton {
			buttons = append(buttons, e)
		}
	}
	sort.Slice(buttons, func(i, j int) bool {
		if buttons[i].Region.TopLeft.Row != buttons[j].Region.TopLeft.Row {
			return buttons[i].Region.TopLeft.Row < buttons[j].Region.TopLeft.Row
		}
		return buttons[i].Region.TopLeft.Col < buttons[j].Region.TopLeft.Col
	})
	idx := -1
	for i, b := range buttons {
		if b.RefID == target.RefID {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return []byte{'\r'}, ClickResult{Strategy: "enter", RefID: target.RefID}, nil
	}
	var out []byte
	for i := 0; i < idx; i++ {
		out = append(out, '\t')
	}
	out = append(out, '\r')
	return out, ClickResult{Strategy: "tab_navigate", RefID: target.RefID}, nil
}
