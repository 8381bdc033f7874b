package detect

import (
	"regexp"
	"strings"

	"github.com/patrick-goecommerce/terminal-mcp/internal/vt"
)

// CheckboxDetector finds a checkbox marker ("[ ]", "[x]", "[X]", "[✓]",
// "( )", "(*)") followed by a label of at most 40 characters (spec.md
// §4.3). The interior character decides the checked attribute.
type CheckboxDetector struct{}

func (d *CheckboxDetector) Name() string  { return "checkbox" }
func (d *CheckboxDetector) Priority() int { return 60 }

var checkboxRe = regexp.MustCompile(`[\[(]([ xX✓*])[\])]`)

// labelEnd returns the exclusive rune index of the label's end, starting
// at start: the first run of >=2 spaces, a box-drawing character, or the
// end of the line, whichever comes first — so a checkbox embedded in a
// bordered box doesn't swallow the border's edge.
func labelEnd(runes []rune, start int) int {
	end := start
	for end < len(runes) {
		if isBoxDrawing(runes[end]) {
			break
		}
		if runes[end] == ' ' {
			n := end
			for n < len(runes) && runes[n] == ' ' {
				n++
			}
			if n-end >= 2 || n >= len(runes) {
				break
			}
			end = n
			continue
		}
		end++
	}
	return end
}

func (d *CheckboxDetector) Detect(v *GridView) []Element {
	dims := v.Dimensions()
	var out []Element
	for r := 0; r < dims.Rows; r++ {
		raw := v.RawLineAt(r)
		runes := []rune(raw)
		for _, m := range checkboxRe.FindAllStringSubmatchIndex(raw, -1) {
			start := runeIndexOf(raw, m[0])
			markStart := runeIndexOf(raw, m[2])
			markEnd := runeIndexOf(raw, m[3])
			closeEnd := start + (markEnd - markStart) + 2 // marker plus its brackets
			mark := string(runes[markStart:markEnd])

			labelStart := closeEnd
			for labelStart < len(runes) && runes[labelStart] == ' ' {
				labelStart++
			}
			if labelStart >= len(runes) || labelStart == closeEnd {
				continue // marker must be followed by at least one space before the label
			}
			end := labelEnd(runes, labelStart)
			label := strings.TrimRight(string(runes[labelStart:end]), " ")
			if label == "" || end-labelStart > 40 {
				continue
			}
			checked := mark != " "
			out = append(out, Element{
				Type: TypeCheckbox,
				Region: vt.Region{
					TopLeft:    vt.Position{Row: r, Col: start},
					Dimensions: vt.Dimensions{Rows: 1, Cols: end - start},
				},
				Text: strings.TrimSpace(string(runes[start:end])),
				Attributes: map[string]any{
					"checked": checked,
					"label":   label,
				},
			})
		}
	}
	return out
}

// runeIndexOf converts a byte offset in s into the corresponding rune
// index.
func runeIndexOf(s string, byteOffset int) int {
	return len([]rune(s[:byteOffset]))
}
