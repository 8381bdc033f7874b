package detect

import (
	"regexp"
	"strings"

	"github.com/patrick-goecommerce/terminal-mcp/internal/vt"
)

// ButtonDetector finds bracketed or angle-bracketed labels, or reverse
// video spans, of at most 20 visible characters with no punctuation
// other than spaces (spec.md §4.3).
// Parenthesized fragments are excluded so a shell prompt like "(main)"
// is never mistaken for a button.
type ButtonDetector struct{}

func (d *ButtonDetector) Name() string  { return "button" }
func (d *ButtonDetector) Priority() int { return 60 }

var (
	bracketButtonRe = regexp.MustCompile(`\[([^\[\]]{1,20})\]`)
	angleButtonRe   = regexp.MustCompile(`<\s*([^<>]{1,20})\s*>`)
)

func (d *ButtonDetector) Detect(v *GridView) []Element {
	dims := v.Dimensions()
	var out []Element
	for r := 0; r < dims.Rows; r++ {
		raw := v.RawLineAt(r)
		for _, m := range bracketButtonRe.FindAllStringSubmatchIndex(raw, -1) {
			label := strings.TrimSpace(raw[m[2]:m[3]])
			if !validButtonLabel(label) {
				continue
			}
			out = append(out, buildButton(r, m[0], m[1], label))
		}
		for _, m := range angleButtonRe.FindAllStringSubmatchIndex(raw, -1) {
			label := strings.TrimSpace(raw[m[2]:m[3]])
			if !validButtonLabel(label) {
				continue
			}
			out = append(out, buildButton(r, m[0], m[1], label))
		}
		out = append(out, reverseVideoButtons(v, r)...)
	}
	return out
}

// validButtonLabel rejects labels containing punctuation other than a
// space, and rejects parenthesized fragments like "(main)".
func validButtonLabel(label string) bool {
	label = strings.TrimSpace(label)
	if label == "" || len([]rune(label)) > 20 {
		return false
	}
	for _, r := range label {
		if r == ' ' {
			continue
		}
		if isPunctNoSpace(r) {
			return false
		}
	}
	return true
}

func buildButton(row, startCol, endCol int, label string) Element {
	return Element{
		Type: TypeButton,
		Region: vt.Region{
			TopLeft:    vt.Position{Row: row, Col: startCol},
			Dimensions: vt.Dimensions{Rows: 1, Cols: endCol - startCol},
		},
		Text:       label,
		Attributes: map[string]any{"label": label},
	}
}

// reverseVideoButtons finds maximal runs of reverse-video cells on row r.
// It does not check them against the bracket/angle forms found above.
func reverseVideoButtons(v *GridView, r int) []Element {
	dims := v.Dimensions()
	var out []Element
	c := 0
	for c < dims.Cols {
		cell := v.Cell(r, c)
		if !cell.Style.Has(vt.StyleReverse) || cell.Character == 0 || cell.Character == ' ' {
			c++
			continue
		}
		start := c
		for c < dims.Cols {
			cc := v.Cell(r, c)
			if !cc.Style.Has(vt.StyleReverse) {
				break
			}
			c++
		}
		end := c
		for end > start && v.Cell(r, end-1).Character == ' ' {
			end--
		}
		for start < end && v.Cell(r, start).Character == ' ' {
			start++
		}
		if end-start < 1 || end-start > 20 {
			continue
		}
		label := extractRange(v.RawLineAt(r), start, end)
		if !validButtonLabel(label) {
			continue
		}
		out = append(out, buildButton(r, start, end, strings.TrimSpace(label)))
	}
	return out
}
