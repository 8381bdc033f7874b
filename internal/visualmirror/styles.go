// Package visualmirror is an operator debug TUI: a single-session,
// read-only Bubbletea viewer over a session.Manager, distinct from
// spec.md §4.5's end-user Visual mode (which mirrors a session into a
// native terminal window via tmux). This is a development aid for
// watching one session's Grid and detected Elements update live.
package visualmirror

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorSuccess = lipgloss.Color("#22C55E")
	colorWarning = lipgloss.Color("#F59E0B")
	colorDanger  = lipgloss.Color("#EF4444")
	colorBorder  = lipgloss.Color("#45475A")
	colorText    = lipgloss.Color("#CDD6F4")
	colorTextDim = lipgloss.Color("#6C7086")
)

var (
	paneBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText).
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorTextDim).
			Padding(0, 1)

	statusRunning = lipgloss.NewStyle().Foreground(colorSuccess)
	statusClosed  = lipgloss.NewStyle().Foreground(colorDanger)
	statusNeeds   = lipgloss.NewStyle().Foreground(colorWarning)
)
