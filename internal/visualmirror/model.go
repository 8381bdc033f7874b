package visualmirror

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/patrick-goecommerce/terminal-mcp/internal/session"
)

// tickMsg fires periodically to pull a fresh snapshot, mirroring the
// teacher's tickMsg/tickCmd refresh loop.
type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the root Bubbletea model: a single-session read-only viewer.
type Model struct {
	mgr *session.Manager
	id  session.SessionID

	width, height int
	quitting      bool

	tree session.TerminalStateTree
	err  error
}

// New builds a Model watching session id through mgr.
func New(mgr *session.Manager, id session.SessionID) Model {
	return Model{mgr: mgr, id: id}
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		tree, err := m.mgr.Snapshot(m.id, session.SnapshotOptions{IncludeRaw: true})
		if err != nil {
			m.err = err
		} else {
			m.err = nil
			m.tree = tree
		}
		return m, tickCmd()
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return "bye\n"
	}
	if m.width == 0 || m.height == 0 {
		return "initializing…"
	}
	if m.err != nil {
		return paneBorder.Width(m.width - 2).Height(m.height - 2).
			Render(statusClosed.Render(m.err.Error()))
	}

	innerW := m.width - 2
	innerH := m.height - 4 // border + title + footer

	title := titleStyle.Render(fmt.Sprintf("session %s", m.id)) + " " + activityBadge(m.tree.Activity.String())

	text := m.tree.Raw
	if runs, dims, err := m.mgr.StyledRuns(m.id); err == nil {
		text = renderGrid(runs, dims.Rows, dims.Cols)
	}
	body := lipgloss.NewStyle().Width(innerW).Height(innerH).MaxHeight(innerH).Render(text)

	footer := footerStyle.Render(fmt.Sprintf("%d elements · cursor %d,%d · q to quit",
		len(m.tree.Elements), m.tree.Cursor.Row, m.tree.Cursor.Col))

	content := lipgloss.JoinVertical(lipgloss.Left, title, body, footer)
	return paneBorder.Width(m.width - 2).Height(m.height - 2).Render(content)
}

func activityBadge(state string) string {
	switch state {
	case "needs_input":
		return statusNeeds.Render("● needs input")
	case "done":
		return statusRunning.Render("● done")
	case "active":
		return statusRunning.Render("● active")
	default:
		return footerStyle.Render("● idle")
	}
}
