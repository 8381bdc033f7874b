// Package detect turns an immutable terminal grid snapshot into an
// ordered list of semantically labeled UI Elements: borders, menus,
// tables, inputs, buttons, checkboxes, progress bars, and status bars.
package detect

import "github.com/patrick-goecommerce/terminal-mcp/internal/vt"

// ElementType names the kind of UI element a detector recognized.
type ElementType string

const (
	TypeBorder    ElementType = "Border"
	TypeMenu      ElementType = "Menu"
	TypeMenuItem  ElementType = "MenuItem"
	TypeTable     ElementType = "Table"
	TypeTableRow  ElementType = "TableRow"
	TypeTableCell ElementType = "TableCell"
	TypeButton    ElementType = "Button"
	TypeInput     ElementType = "Input"
	TypeCheckbox  ElementType = "Checkbox"
	TypeProgress  ElementType = "Progress"
	TypeStatusBar ElementType = "StatusBar"
)

// typeAbbrev maps an ElementType to its ref-id prefix (spec.md §4.3).
var typeAbbrev = map[ElementType]string{
	TypeBorder:    "border",
	TypeMenu:      "menu",
	TypeMenuItem:  "item",
	TypeTable:     "table",
	TypeTableRow:  "row",
	TypeTableCell: "cell",
	TypeButton:    "btn",
	TypeInput:     "input",
	TypeCheckbox:  "check",
	TypeProgress:  "progress",
	TypeStatusBar: "status",
}

// Element is a semantically labeled region of the grid.
type Element struct {
	RefID      string
	Type       ElementType
	Region     vt.Region
	Text       string
	Attributes map[string]any

	// priority, kept internal, is the priority of the detector that
	// produced the element; newCandidate sets it.
	priority int
}

// candidate is a detector's proposed Element before ref-id assignment
// and overlap resolution.
type candidate struct {
	elem       Element
	detector   string
	priority   int
	isChildOf  func(other candidate) bool // true if this may nest inside other (Border children)
}

func newCandidate(priority int, detector string, e Element) candidate {
	e.priority = priority
	return candidate{elem: e, detector: detector, priority: priority}
}
