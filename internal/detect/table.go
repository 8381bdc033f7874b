package detect

import (
	"strings"

	"github.com/patrick-goecommerce/terminal-mcp/internal/vt"
)

// TableDetector finds >=2 consecutive lines whose whitespace columns
// align into >=2 inter-column gaps of width>=2, consistent within ±1
// column across lines (spec.md §4.3).
type TableDetector struct{}

func (d *TableDetector) Name() string  { return "table" }
func (d *TableDetector) Priority() int { return 80 }

type gapSpan struct{ start, end int } // end exclusive

// rowGaps returns the internal whitespace gaps (width>=2) strictly
// between the first and last visible character of the row.
func rowGaps(raw string) []gapSpan {
	runes := []rune(raw)
	lo := 0
	for lo < len(runes) && runes[lo] == ' ' {
		lo++
	}
	hi := len(runes)
	for hi > lo && runes[hi-1] == ' ' {
		hi--
	}
	if hi-lo < 1 {
		return nil
	}
	var gaps []gapSpan
	c := lo
	for c < hi {
		if runes[c] != ' ' {
			c++
			continue
		}
		start := c
		for c < hi && runes[c] == ' ' {
			c++
		}
		if c-start >= 2 {
			gaps = append(gaps, gapSpan{start: start, end: c})
		}
	}
	return gaps
}

func isRuleLine(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if !isHorizontalRule(r) {
			return false
		}
	}
	return true
}

func gapsConsistent(ref, other []gapSpan) bool {
	if len(ref) != len(other) || len(ref) < 2 {
		return false
	}
	for i := range ref {
		diff := ref[i].start - other[i].start
		if diff < -1 || diff > 1 {
			return false
		}
	}
	return true
}

func splitByGaps(raw string, gaps []gapSpan) []string {
	runes := []rune(raw)
	var cells []string
	prev := 0
	for _, g := range gaps {
		end := g.start
		if end > len(runes) {
			end = len(runes)
		}
		if prev <= end {
			cells = append(cells, strings.TrimSpace(string(runes[prev:end])))
		}
		prev = g.end
	}
	if prev <= len(runes) {
		cells = append(cells, strings.TrimSpace(string(runes[prev:])))
	}
	return cells
}

func (d *TableDetector) Detect(v *GridView) []Element {
	dims := v.Dimensions()

	type rowInfo struct {
		row  int
		raw  string
		gaps []gapSpan
		rule bool
	}
	infos := make([]rowInfo, dims.Rows)
	for r := 0; r < dims.Rows; r++ {
		raw := v.RawLineAt(r)
		infos[r] = rowInfo{row: r, raw: raw, gaps: rowGaps(raw), rule: isRuleLine(raw)}
	}

	var out []Element
	r := 0
	for r < dims.Rows {
		if len(infos[r].gaps) < 2 || infos[r].rule {
			r++
			continue
		}
		ref := infos[r].gaps
		run := []int{r}
		ruleAfterFirst := -1
		c := r + 1
		for c < dims.Rows {
			if infos[c].rule {
				if len(run) == 1 {
					ruleAfterFirst = c
				}
				c++
				continue
			}
			if !gapsConsistent(ref, infos[c].gaps) {
				break
			}
			run = append(run, c)
			c++
		}
		if len(run) >= 2 {
			out = append(out, buildTableElement(v, run, ref, ruleAfterFirst))
			r = c
		} else {
			r++
		}
	}
	return out
}

func buildTableElement(v *GridView, rows []int, gaps []gapSpan, ruleAfterFirst int) Element {
	headerIdx := -1
	first := rows[0]
	if ruleAfterFirst == first+1 {
		headerIdx = first
	} else if v.RowStyleUniform(first, vt.StyleBold) || v.RowStyleUniform(first, vt.StyleUnderline) || v.RowStyleUniform(first, vt.StyleReverse) {
		headerIdx = first
	}

	var headers []string
	var dataRows [][]string
	for _, r := range rows {
		cells := splitByGaps(v.RawLineAt(r), rowGaps(v.RawLineAt(r)))
		if r == headerIdx {
			headers = cells
			continue
		}
		dataRows = append(dataRows, cells)
	}

	minCol, maxCol := 1<<30, 0
	for _, r := range rows {
		raw := v.RawLineAt(r)
		lead := len(raw) - len(strings.TrimLeft(raw, " "))
		trimmedRight := len(strings.TrimRight(raw, " "))
		if lead < minCol {
			minCol = lead
		}
		if trimmedRight > maxCol {
			maxCol = trimmedRight
		}
	}
	if minCol == 1<<30 {
		minCol = 0
	}
	top, bottom := rows[0], rows[len(rows)-1]

	attrs := map[string]any{"rows": dataRows}
	if headers != nil {
		attrs["headers"] = headers
	}
	var textLines []string
	for _, r := range rows {
		textLines = append(textLines, v.LineAt(r))
	}
	return Element{
		Type: TypeTable,
		Region: vt.Region{
			TopLeft:    vt.Position{Row: top, Col: minCol},
			Dimensions: vt.Dimensions{Rows: bottom - top + 1, Cols: maxCol - minCol},
		},
		Text:       strings.Join(textLines, "\n"),
		Attributes: attrs,
	}
}
