package vt

import (
	"fmt"
	"strconv"
	"strings"
)

// params parses the accumulated CSI parameter bytes into a slice of
// ints, empty entries defaulting to 0 (per VT convention, the caller
// resolves 0 vs "absent" via paramOr).
func (p *Parser) params() []int {
	if len(p.csi.params) == 0 {
		return nil
	}
	parts := strings.Split(string(p.csi.params), ";")
	out := make([]int, len(parts))
	for i, s := range parts {
		v, _ := strconv.Atoi(s)
		out[i] = v
	}
	return out
}

// paramOr returns params[i] if present and > 0, else def — the standard
// VT rule that a 0 or absent parameter means "use the default".
func paramOr(params []int, i, def int) int {
	if i >= 0 && i < len(params) && params[i] > 0 {
		return params[i]
	}
	return def
}

// paramRaw returns params[i] if present, else def, without the
// positive-only default substitution (used where 0 is a meaningful
// value, e.g. SGR reset or erase-mode 0).
func paramRaw(params []int, i, def int) int {
	if i >= 0 && i < len(params) {
		return params[i]
	}
	return def
}

func (p *Parser) dispatchCSI(final byte) {
	params := p.params()
	g := p.grid()

	if p.csi.private {
		p.dispatchPrivateMode(final, params)
		return
	}

	switch final {
	case 'A': // CUU
		n := paramOr(params, 0, 1)
		c := g.Cursor()
		g.CursorMove(c.Row-n, c.Col)
	case 'B': // CUD
		n := paramOr(params, 0, 1)
		c := g.Cursor()
		g.CursorMove(c.Row+n, c.Col)
	case 'C': // CUF
		n := paramOr(params, 0, 1)
		c := g.Cursor()
		g.CursorMove(c.Row, c.Col+n)
	case 'D': // CUB
		n := paramOr(params, 0, 1)
		c := g.Cursor()
		g.CursorMove(c.Row, c.Col-n)
	case 'E': // CNL
		n := paramOr(params, 0, 1)
		c := g.Cursor()
		g.CursorMove(c.Row+n, 0)
	case 'F': // CPL
		n := paramOr(params, 0, 1)
		c := g.Cursor()
		g.CursorMove(c.Row-n, 0)
	case 'G': // CHA
		n := paramOr(params, 0, 1)
		c := g.Cursor()
		g.CursorMove(c.Row, n-1)
	case 'd': // VPA
		n := paramOr(params, 0, 1)
		c := g.Cursor()
		g.CursorMove(n-1, c.Col)
	case 'H', 'f': // CUP / HVP
		row := paramOr(params, 0, 1)
		col := paramOr(params, 1, 1)
		g.CursorMove(row-1, col-1)
	case 'J': // ED
		g.Clear(EraseMode(paramRaw(params, 0, 0)))
	case 'K': // EL
		g.EraseLine(EraseMode(paramRaw(params, 0, 0)))
	case 'L': // IL
		g.InsertLines(paramOr(params, 0, 1))
	case 'M': // DL
		g.DeleteLines(paramOr(params, 0, 1))
	case 'P': // DCH
		g.DeleteChars(paramOr(params, 0, 1))
	case '@': // ICH
		g.InsertChars(paramOr(params, 0, 1))
	case 'X': // ECH
		g.EraseChars(paramOr(params, 0, 1))
	case 'S': // SU
		g.ScrollUp(paramOr(params, 0, 1))
	case 'T': // SD
		g.ScrollDown(paramOr(params, 0, 1))
	case 'm': // SGR
		p.dispatchSGR(params)
	case 'r': // DECSTBM
		top := paramOr(params, 0, 1)
		bottom := paramOr(params, 1, g.Dimensions().Rows)
		g.SetScrollRegion(top-1, bottom-1)
	case 's': // SCP (non-private form)
		g.SaveCursor()
	case 'u': // RCP (non-private form)
		g.RestoreCursor()
	case 'h', 'l': // public (non-?) mode set/reset: none are modeled
	case 'n': // DSR
		p.dispatchDSR(params)
	case 'c': // DA
		if paramOr(params, 0, 0) == 0 {
			p.handler.WriteBack([]byte("\x1b[?6c"))
		}
	}
}

func (p *Parser) dispatchDSR(params []int) {
	if paramOr(params, 0, 0) != 6 {
		return
	}
	g := p.grid()
	c := g.Cursor()
	p.handler.WriteBack([]byte(fmt.Sprintf("\x1b[%d;%dR", c.Row+1, c.Col+1)))
}

// dispatchPrivateMode handles `?`-prefixed CSI h/l mode sequences.
func (p *Parser) dispatchPrivateMode(final byte, params []int) {
	if final != 'h' && final != 'l' {
		return
	}
	on := final == 'h'
	g := p.grid()
	for _, mode := range params {
		switch mode {
		case 7: // DECAWM autowrap
			g.SetAutowrap(on)
		case 25: // DECTCEM cursor visibility
			g.SetCursorVisible(on)
		case 1000, 1002, 1003, 1006:
			// Mouse reporting modes: tracked by the session layer via
			// Handler, not the grid itself; see MouseModeObserver.
			if mh, ok := p.handler.(MouseModeObserver); ok {
				mh.SetMouseMode(mode, on)
			}
		case 47, 1047: // legacy alternate screen
			g.SwitchBuffer(on)
		case 1048: // save/restore cursor only
			if on {
				g.SaveCursor()
			} else {
				g.RestoreCursor()
			}
		case 1049: // alternate screen + cursor save, clear on enter
			if on {
				g.SaveCursor()
				g.SwitchBuffer(true)
				g.Clear(EraseAll)
			} else {
				g.SwitchBuffer(false)
				g.RestoreCursor()
			}
		}
	}
}

// MouseModeObserver is an optional Handler capability notified when the
// child process enables or disables a mouse-reporting mode (spec.md
// §4.5's click-synthesis strategy selection depends on this).
type MouseModeObserver interface {
	SetMouseMode(mode int, on bool)
}

func (p *Parser) dispatchOSC() {
	payload := string(p.osc)
	idx := strings.IndexByte(payload, ';')
	if idx < 0 {
		return
	}
	code := payload[:idx]
	rest := payload[idx+1:]
	switch code {
	case "0", "1", "2":
		p.grid().SetTitle(rest)
	case "8":
		// Hyperlink annotation: acknowledged, not stored per-cell since
		// no detector consumes it.
	default:
		// Color-palette sets and anything else: acknowledged, discarded.
	}
}

func (p *Parser) dispatchSGR(params []int) {
	g := p.grid()
	pen := g.GetPen()
	if len(params) == 0 {
		params = []int{0}
	}
	i := 0
	for i < len(params) {
		v := params[i]
		switch {
		case v == 0:
			pen = DefaultPen
		case v == 1:
			pen.Style |= StyleBold
		case v == 2:
			pen.Style |= StyleDim
		case v == 3:
			pen.Style |= StyleItalic
		case v == 4:
			pen.Style |= StyleUnderline
		case v == 5:
			pen.Style |= StyleBlink
		case v == 7:
			pen.Style |= StyleReverse
		case v == 8:
			pen.Style |= StyleHidden
		case v == 9:
			pen.Style |= StyleStrikethrough
		case v == 21 || v == 22:
			pen.Style &^= StyleBold | StyleDim
		case v == 23:
			pen.Style &^= StyleItalic
		case v == 24:
			pen.Style &^= StyleUnderline
		case v == 25:
			pen.Style &^= StyleBlink
		case v == 27:
			pen.Style &^= StyleReverse
		case v == 28:
			pen.Style &^= StyleHidden
		case v == 29:
			pen.Style &^= StyleStrikethrough
		case v >= 30 && v <= 37:
			pen.FG = Color{Kind: ColorNamed16, Value: v - 30}
		case v == 38:
			var c Color
			c, i = parseExtendedColor(params, i)
			pen.FG = c
		case v == 39:
			pen.FG = DefaultColor
		case v >= 40 && v <= 47:
			pen.BG = Color{Kind: ColorNamed16, Value: v - 40}
		case v == 48:
			var c Color
			c, i = parseExtendedColor(params, i)
			pen.BG = c
		case v == 49:
			pen.BG = DefaultColor
		case v >= 90 && v <= 97:
			pen.FG = Color{Kind: ColorNamed16, Value: v - 90 + 8}
		case v >= 100 && v <= 107:
			pen.BG = Color{Kind: ColorNamed16, Value: v - 100 + 8}
		}
		i++
	}
	g.SetPen(pen)
}

// parseExtendedColor parses "38;5;n" or "38;2;r;g;b" (and the 48;...
// background forms), returning the resolved color and the index of the
// last parameter consumed.
func parseExtendedColor(params []int, i int) (Color, int) {
	if i+1 >= len(params) {
		return DefaultColor, i
	}
	switch params[i+1] {
	case 5:
		if i+2 < len(params) {
			return Color{Kind: ColorIndexed256, Value: params[i+2]}, i + 2
		}
	case 2:
		if i+4 < len(params) {
			r, gg, b := params[i+2], params[i+3], params[i+4]
			return Color{Kind: ColorRGB, Value: (r << 16) | (gg << 8) | b}, i + 4
		}
	}
	return DefaultColor, i + 1
}
