package detect

import (
	"regexp"
	"strings"

	"github.com/patrick-goecommerce/terminal-mcp/internal/vt"
)

// InputDetector finds a label followed on the same line by a bracketed
// field, an underline run, or a cursor parked after a colon-terminated
// label (spec.md §4.3).
type InputDetector struct{}

func (d *InputDetector) Name() string  { return "input" }
func (d *InputDetector) Priority() int { return 70 }

var bracketFieldRe = regexp.MustCompile(`^(.*?)\[([^\[\]]*)\]\s*$`)

func (d *InputDetector) Detect(v *GridView) []Element {
	dims := v.Dimensions()
	cursor := v.cursor
	var out []Element
	for r := 0; r < dims.Rows; r++ {
		raw := v.RawLineAt(r)
		line := strings.TrimRight(raw, " ")
		if line == "" {
			continue
		}

		if m := bracketFieldRe.FindStringSubmatch(line); m != nil && strings.TrimSpace(m[1]) != "" {
			label := strings.TrimSpace(m[1])
			value := strings.TrimSpace(m[2])
			out = append(out, Element{
				Type: TypeInput,
				Region: vt.Region{
					TopLeft:    vt.Position{Row: r, Col: 0},
					Dimensions: vt.Dimensions{Rows: 1, Cols: len(line)},
				},
				Text: line,
				Attributes: map[string]any{
					"label": label,
					"value": value,
				},
			})
			continue
		}

		if underStart, underEnd, ok := underlineRun(v, r); ok {
			label := strings.TrimSpace(line[:minInt(underStart, len(line))])
			value := strings.TrimSpace(extractRange(raw, underStart, underEnd))
			out = append(out, Element{
				Type: TypeInput,
				Region: vt.Region{
					TopLeft:    vt.Position{Row: r, Col: 0},
					Dimensions: vt.Dimensions{Rows: 1, Cols: underEnd},
				},
				Text: line,
				Attributes: map[string]any{
					"label": label,
					"value": value,
				},
			})
			continue
		}

		if strings.HasSuffix(strings.TrimRight(line, " "), ":") && cursor.Row == r {
			trailing := raw[len(line):]
			if strings.Contains(trailing, " ") || cursor.Col >= len(line) {
				out = append(out, Element{
					Type: TypeInput,
					Region: vt.Region{
						TopLeft:    vt.Position{Row: r, Col: 0},
						Dimensions: vt.Dimensions{Rows: 1, Cols: dims.Cols},
					},
					Text: line,
					Attributes: map[string]any{
						"label": strings.TrimSuffix(strings.TrimSpace(line), ":"),
						"value": "",
					},
				})
			}
		}
	}
	return out
}

// underlineRun finds a run of underline-styled space cells on row r.
func underlineRun(v *GridView, r int) (start, end int, ok bool) {
	dims := v.Dimensions()
	c := 0
	for c < dims.Cols {
		cell := v.Cell(r, c)
		if !cell.Style.Has(vt.StyleUnderline) {
			c++
			continue
		}
		s := c
		for c < dims.Cols && v.Cell(r, c).Style.Has(vt.StyleUnderline) {
			c++
		}
		if c-s >= 1 {
			return s, c, true
		}
	}
	return 0, 0, false
}

func extractRange(s string, start, end int) string {
	runes := []rune(s)
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	if start >= end {
		return ""
	}
	return string(runes[start:end])
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
