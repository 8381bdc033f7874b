package detect

import "github.com/patrick-goecommerce/terminal-mcp/internal/vt"

// BorderDetector finds closed box-drawing rectangles of height>=3 and
// width>=3 with all four corners present. Its claim is its perimeter
// only, so children detected in its interior are never rejected by the
// overlap rule (spec.md §4.3).
type BorderDetector struct{}

func (d *BorderDetector) Name() string   { return "border" }
func (d *BorderDetector) Priority() int  { return 100 }

type hRun struct {
	row, start, end int // end exclusive
}

func (d *BorderDetector) Detect(v *GridView) []Element {
	dims := v.Dimensions()
	var runs []hRun
	for r := 0; r < dims.Rows; r++ {
		c := 0
		for c < dims.Cols {
			if !isBoxDrawing(v.Cell(r, c).Character) {
				c++
				continue
			}
			start := c
			for c < dims.Cols && isBoxDrawing(v.Cell(r, c).Character) {
				c++
			}
			if c-start >= 3 {
				runs = append(runs, hRun{row: r, start: start, end: c})
			}
		}
	}

	var out []Element
	for i := 0; i < len(runs); i++ {
		top := runs[i]
		for j := i + 1; j < len(runs); j++ {
			bottom := runs[j]
			if bottom.start != top.start || bottom.end != top.end {
				continue
			}
			height := bottom.row - top.row + 1
			if height < 3 {
				continue
			}
			if !d.verticalEdges(v, top.row, bottom.row, top.start, top.end-1) {
				continue
			}
			region := vt.Region{
				TopLeft:    vt.Position{Row: top.row, Col: top.start},
				Dimensions: vt.Dimensions{Rows: height, Cols: top.end - top.start},
			}
			out = append(out, Element{
				Type:       TypeBorder,
				Region:     region,
				Text:       "",
				Attributes: map[string]any{},
			})
			break // don't pair this top run with a further bottom run too
		}
	}
	return out
}

func (d *BorderDetector) verticalEdges(v *GridView, top, bottom, left, right int) bool {
	for r := top + 1; r < bottom; r++ {
		if !isBoxDrawing(v.Cell(r, left).Character) {
			return false
		}
		if !isBoxDrawing(v.Cell(r, right).Character) {
			return false
		}
	}
	return true
}
