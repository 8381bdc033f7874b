package visualmirror

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/patrick-goecommerce/terminal-mcp/internal/session"
)

func TestModel_UpdatesSnapshotOnTick(t *testing.T) {
	mgr := session.NewManager(session.ManagerConfig{MaxSessions: 4})
	id, err := mgr.Create(session.CreateConfig{Command: []string{"/bin/cat"}, Rows: 10, Cols: 40})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer mgr.Close(nil, id) //nolint:errcheck

	m := New(mgr, id)
	m.width, m.height = 80, 24

	updated, cmd := m.Update(tickMsg(time.Now()))
	mm := updated.(Model)
	if mm.err != nil {
		t.Fatalf("unexpected error after tick: %v", mm.err)
	}
	if cmd == nil {
		t.Fatal("expected a follow-up tick command")
	}
}

func TestModel_QuitsOnQ(t *testing.T) {
	mgr := session.NewManager(session.ManagerConfig{MaxSessions: 4})
	id, err := mgr.Create(session.CreateConfig{Command: []string{"/bin/cat"}})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer mgr.Close(nil, id) //nolint:errcheck

	m := New(mgr, id)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	mm := updated.(Model)
	if !mm.quitting {
		t.Error("expected quitting to be true after 'q'")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}

func TestModel_ViewBeforeSizeIsInitializing(t *testing.T) {
	mgr := session.NewManager(session.ManagerConfig{MaxSessions: 4})
	id, err := mgr.Create(session.CreateConfig{Command: []string{"/bin/cat"}})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer mgr.Close(nil, id) //nolint:errcheck

	m := New(mgr, id)
	if got := m.View(); got != "initializing…" {
		t.Errorf("View() before size = %q, want %q", got, "initializing…")
	}
}
