package detect

import (
	"sort"
	"strconv"

	"github.com/patrick-goecommerce/terminal-mcp/internal/vt"
)

// Detector is the capability every pattern matcher implements: a name
// for logging/ref-ids, a fixed priority, and a pure function from an
// immutable grid view to candidate elements. Detectors never mutate the
// grid.
type Detector interface {
	Name() string
	Priority() int
	Detect(view *GridView) []Element
}

// Engine runs a priority-ordered, overlap-resolving pipeline of
// Detectors over a grid snapshot.
type Engine struct {
	detectors []Detector
}

// NewEngine builds the default detector registry in spec.md §4.3
// priority order: Border(100), Menu/Table(80), Input(70),
// Button/Checkbox/Progress(60), StatusBar(50).
func NewEngine() *Engine {
	return &Engine{detectors: []Detector{
		&BorderDetector{},
		&MenuDetector{},
		&TableDetector{},
		&InputDetector{},
		&ButtonDetector{},
		&CheckboxDetector{},
		&ProgressDetector{},
		&StatusBarDetector{},
	}}
}

// Register adds a detector to the engine (used by tests and by callers
// wanting to extend the registry declaratively, per spec.md §9).
func (e *Engine) Register(d Detector) { e.detectors = append(e.detectors, d) }

type cellKey struct{ r, c int }

// Detect runs the full pipeline against grid and returns the accepted
// elements in reading order (top-to-bottom, left-to-right), with
// ref_ids assigned per spec.md §4.3. Detection never fails: a grid with
// nothing recognizable yields an empty, non-nil slice.
func (e *Engine) Detect(grid *vt.Grid) []Element {
	view := newGridView(grid)

	byPriority := make(map[int][]Detector)
	var priorities []int
	seen := make(map[int]bool)
	for _, d := range e.detectors {
		p := d.Priority()
		byPriority[p] = append(byPriority[p], d)
		if !seen[p] {
			seen[p] = true
			priorities = append(priorities, p)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(priorities)))

	coverage := make(map[cellKey]bool)
	var accepted []Element

	for _, p := range priorities {
		var group []candidate
		for _, d := range byPriority[p] {
			for _, elem := range d.Detect(view) {
				group = append(group, newCandidate(p, d.Name(), elem))
			}
		}
		sort.SliceStable(group, func(i, j int) bool {
			ai, aj := group[i].elem.Region, group[j].elem.Region
			if ai.Area() != aj.Area() {
				return ai.Area() > aj.Area() // larger area first
			}
			if ai.TopLeft.Row != aj.TopLeft.Row {
				return ai.TopLeft.Row < aj.TopLeft.Row // top-most
			}
			return ai.TopLeft.Col < aj.TopLeft.Col // left-most
		})

		for _, c := range group {
			if overlapsCoverage(c.elem.Region, coverage) {
				continue
			}
			accepted = append(accepted, c.elem)
			claimCoverage(c.elem, coverage)
		}
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		a, b := accepted[i].Region.TopLeft, accepted[j].Region.TopLeft
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	})

	ordinals := make(map[ElementType]int)
	for i := range accepted {
		t := accepted[i].Type
		ordinals[t]++
		accepted[i].RefID = typeAbbrev[t] + strconv.Itoa(ordinals[t])
	}
	if accepted == nil {
		accepted = []Element{}
	}
	return accepted
}

// claimCoverage marks an element's claimed cells. A Border's claim is
// its perimeter only (spec.md §4.3), so interior cells remain free for
// children to occupy without tripping the overlap rule. A Menu claims
// nothing at all: it is a flattened view over the same rows its
// MenuItem children individually claim, not a distinct region of cells.
func claimCoverage(e Element, coverage map[cellKey]bool) {
	r := e.Region
	if e.Type == TypeMenu {
		return
	}
	if e.Type == TypeBorder {
		for c := r.TopLeft.Col; c < r.Right(); c++ {
			coverage[cellKey{r.TopLeft.Row, c}] = true
			coverage[cellKey{r.Bottom() - 1, c}] = true
		}
		for row := r.TopLeft.Row; row < r.Bottom(); row++ {
			coverage[cellKey{row, r.TopLeft.Col}] = true
			coverage[cellKey{row, r.Right() - 1}] = true
		}
		return
	}
	for row := r.TopLeft.Row; row < r.Bottom(); row++ {
		for col := r.TopLeft.Col; col < r.Right(); col++ {
			coverage[cellKey{row, col}] = true
		}
	}
}

// overlapsCoverage reports whether any cell in region is already
// claimed. The inline-detector overlap threshold is 0%: any non-empty
// intersection rejects the candidate (spec.md §9 Open Question a).
func overlapsCoverage(r vt.Region, coverage map[cellKey]bool) bool {
	for row := r.TopLeft.Row; row < r.Bottom(); row++ {
		for col := r.TopLeft.Col; col < r.Right(); col++ {
			if coverage[cellKey{row, col}] {
				return true
			}
		}
	}
	return false
}
