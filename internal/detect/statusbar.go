package detect

import "github.com/patrick-goecommerce/terminal-mcp/internal/vt"

// StatusBarDetector finds the first and/or last row of the grid when it
// is at least 60% non-space and visually distinct from the row next to
// it, via reverse video, a uniform non-default background, or a
// horizontal rule (spec.md §4.3).
type StatusBarDetector struct{}

func (d *StatusBarDetector) Name() string  { return "statusbar" }
func (d *StatusBarDetector) Priority() int { return 50 }

func (d *StatusBarDetector) Detect(v *GridView) []Element {
	dims := v.Dimensions()
	if dims.Rows == 0 {
		return nil
	}
	var out []Element
	if e, ok := d.checkRow(v, 0, 1); ok {
		out = append(out, e)
	}
	if dims.Rows > 1 {
		if e, ok := d.checkRow(v, dims.Rows-1, dims.Rows-2); ok {
			out = append(out, e)
		}
	}
	return out
}

func (d *StatusBarDetector) checkRow(v *GridView, row, neighbor int) (Element, bool) {
	dims := v.Dimensions()
	if v.NonSpaceRatio(row) < 0.6 {
		return Element{}, false
	}
	if !d.distinctFromNeighbor(v, row, neighbor) {
		return Element{}, false
	}
	return Element{
		Type: TypeStatusBar,
		Region: vt.Region{
			TopLeft:    vt.Position{Row: row, Col: 0},
			Dimensions: vt.Dimensions{Rows: 1, Cols: dims.Cols},
		},
		Text:       v.LineAt(row),
		Attributes: map[string]any{},
	}, true
}

func (d *StatusBarDetector) distinctFromNeighbor(v *GridView, row, neighbor int) bool {
	if v.RowStyleUniform(row, vt.StyleReverse) && !v.RowStyleUniform(neighbor, vt.StyleReverse) {
		return true
	}
	bg, ok := v.RowHasUniformNonDefaultBG(row)
	if ok {
		nbg, nok := v.RowHasUniformNonDefaultBG(neighbor)
		if !nok || nbg != bg {
			return true
		}
	}
	if isRuleLine(v.RawLineAt(row)) {
		return true
	}
	return false
}
