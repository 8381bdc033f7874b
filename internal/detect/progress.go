package detect

import (
	"strings"

	"github.com/patrick-goecommerce/terminal-mcp/internal/vt"
)

// ProgressDetector finds horizontal runs of at least 4 cells where at
// least 80% of the characters are Unicode block elements, reporting the
// filled fraction as percent (spec.md §4.3).
type ProgressDetector struct{}

func (d *ProgressDetector) Name() string  { return "progress" }
func (d *ProgressDetector) Priority() int { return 60 }

const progressBlockChars = "█▓▒░"

func isProgressBlock(r rune) bool {
	return strings.ContainsRune(progressBlockChars, r)
}

func (d *ProgressDetector) Detect(v *GridView) []Element {
	dims := v.Dimensions()
	var out []Element
	for r := 0; r < dims.Rows; r++ {
		raw := v.RawLineAt(r)
		runes := []rune(raw)
		c := 0
		for c < len(runes) {
			if runes[c] == ' ' {
				c++
				continue
			}
			start := c
			blockCount := 0
			filled := 0
			for c < len(runes) && runes[c] != ' ' {
				if isProgressBlock(runes[c]) {
					blockCount++
					if runes[c] == '█' {
						filled++
					}
				}
				c++
			}
			length := c - start
			if length >= 4 && float64(blockCount)/float64(length) >= 0.8 {
				percent := int(float64(filled) / float64(length) * 100)
				out = append(out, Element{
					Type: TypeProgress,
					Region: vt.Region{
						TopLeft:    vt.Position{Row: r, Col: start},
						Dimensions: vt.Dimensions{Rows: 1, Cols: length},
					},
					Text: string(runes[start:c]),
					Attributes: map[string]any{
						"percent": percent,
					},
				})
			}
		}
	}
	return out
}
