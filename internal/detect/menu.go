package detect

import (
	"regexp"
	"strings"

	"github.com/patrick-goecommerce/terminal-mcp/internal/vt"
)

// MenuDetector finds contiguous vertical blocks of >=2 short lines
// sharing a common left margin. A block holds lines matching one of the
// three item patterns in spec.md §4.3, plus unmarked lines at the same
// margin that follow a marked item (see absorbPlainSiblings).
type MenuDetector struct{}

func (d *MenuDetector) Name() string  { return "menu" }
func (d *MenuDetector) Priority() int { return 80 }

var (
	bracketedItemRe = regexp.MustCompile(`^[\[(][0-9a-zA-Z][\])]\s`)
	selectionPrefix = []string{">", "*", "→", "▶", "●"}
)

type menuLine struct {
	row       int
	rowSpan   int
	margin    int
	text      string
	isItem    bool
	selected  bool
	label     string
}

func classifyMenuLine(row int, v *GridView, joined string) menuLine {
	ml := menuLine{row: row, text: joined}
	trimmed := strings.TrimLeft(joined, " ")
	indent := len(joined) - len(trimmed)
	ml.margin = indent // overwritten below for marker forms, where the label's own column is what must line up across items

	for _, prefix := range selectionPrefix {
		if strings.HasPrefix(trimmed, prefix) {
			rest := strings.TrimPrefix(trimmed, prefix)
			if strings.HasPrefix(rest, " ") || rest == "" {
				ml.isItem = true
				ml.selected = true
				label := strings.TrimLeft(rest, " ")
				ml.label = strings.TrimSpace(label)
				ml.margin = indent + len(prefix) + len(rest) - len(label)
				return ml
			}
		}
	}
	if bracketedItemRe.MatchString(trimmed) {
		rest := trimmed[3:]
		label := strings.TrimLeft(rest, " ")
		ml.isItem = true
		ml.label = strings.TrimSpace(label)
		ml.margin = indent + 3 + len(rest) - len(label)
		return ml
	}
	if bg, ok := v.RowHasUniformNonDefaultBG(row); ok && bg.Kind != vt.ColorDefault {
		ml.isItem = true
		ml.selected = true
		ml.label = trimmed
		ml.margin = indent
		return ml
	}
	return ml
}

// plainMenuEntry reports whether a non-marked line is a plausible
// unselected sibling of an already-recognized item run at the given
// margin: same indentation, short, and not prose (no sentence-ending
// punctuation).
func plainMenuEntry(line menuLine, margin int) (label string, ok bool) {
	trimmed := strings.TrimLeft(line.text, " ")
	indent := len(line.text) - len(trimmed)
	trimmed = strings.TrimRight(trimmed, " ")
	if indent != margin || trimmed == "" || len([]rune(trimmed)) > 40 {
		return "", false
	}
	if strings.HasSuffix(trimmed, ":") || strings.HasSuffix(trimmed, ".") {
		return "", false
	}
	return trimmed, true
}

// absorbPlainSiblings extends each recognized item run to swallow
// adjacent plain-text lines at the same margin, so a menu with one
// marked selection and otherwise-unmarked entries is still grouped as a
// single block.
func absorbPlainSiblings(lines []menuLine) {
	activeMargin := -1
	for i := range lines {
		if lines[i].isItem {
			activeMargin = lines[i].margin
			continue
		}
		if activeMargin == -1 {
			continue
		}
		if label, ok := plainMenuEntry(lines[i], activeMargin); ok {
			lines[i].isItem = true
			lines[i].label = label
			lines[i].margin = activeMargin
			continue
		}
		activeMargin = -1
	}
}

func (d *MenuDetector) Detect(v *GridView) []Element {
	dims := v.Dimensions()
	var lines []menuLine
	r := 0
	for r < dims.Rows {
		joined, span, ok := v.JoinedLineAt(r)
		if !ok {
			r++
			continue
		}
		ml := classifyMenuLine(r, v, joined)
		ml.rowSpan = span
		lines = append(lines, ml)
		r += span
	}
	absorbPlainSiblings(lines)

	var out []Element
	i := 0
	for i < len(lines) {
		if !lines[i].isItem {
			i++
			continue
		}
		margin := lines[i].margin
		j := i
		for j < len(lines) && lines[j].isItem && lines[j].margin == margin {
			j++
		}
		if j-i >= 2 {
			items := lines[i:j]
			topRow := items[0].row
			bottomRow := items[len(items)-1].row + items[len(items)-1].rowSpan - 1
			maxWidth := 0
			for _, it := range items {
				if l := visibleLen(it.text); l > maxWidth {
					maxWidth = l
				}
			}
			if maxWidth < 1 {
				maxWidth = 1
			}
			selectedIdx := -1
			texts := make([]string, len(items))
			for k, it := range items {
				texts[k] = it.label
				if selectedIdx == -1 && it.selected {
					selectedIdx = k
				}
			}
			attrs := map[string]any{"items": texts}
			if selectedIdx >= 0 {
				attrs["selected_index"] = selectedIdx
			}
			out = append(out, Element{
				Type: TypeMenu,
				Region: vt.Region{
					TopLeft:    vt.Position{Row: topRow, Col: margin},
					Dimensions: vt.Dimensions{Rows: bottomRow - topRow + 1, Cols: maxWidth},
				},
				Text:       strings.Join(texts, "\n"),
				Attributes: attrs,
			})
			for k, it := range items {
				out = append(out, Element{
					Type: TypeMenuItem,
					Region: vt.Region{
						TopLeft:    vt.Position{Row: it.row, Col: margin},
						Dimensions: vt.Dimensions{Rows: it.rowSpan, Cols: maxWidth},
					},
					Text: it.label,
					Attributes: map[string]any{
						"label":    it.label,
						"selected": k == selectedIdx,
						"index":    k,
					},
				})
			}
		}
		i = j
	}
	return out
}
