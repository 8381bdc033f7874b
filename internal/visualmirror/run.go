package visualmirror

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/patrick-goecommerce/terminal-mcp/internal/session"
)

// Run starts the debug viewer for session id and blocks until the
// operator quits it (q or Ctrl+C).
func Run(mgr *session.Manager, id session.SessionID) error {
	p := tea.NewProgram(New(mgr, id), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
