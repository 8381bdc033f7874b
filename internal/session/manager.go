package session

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/patrick-goecommerce/terminal-mcp/internal/apperr"
	"github.com/patrick-goecommerce/terminal-mcp/internal/ptyio"
	"github.com/patrick-goecommerce/terminal-mcp/internal/vt"
)

// ManagerConfig bounds the resources a Manager will allocate, per
// spec.md §5's Resource caps paragraph.
type ManagerConfig struct {
	MaxSessions      int
	RingCapacity     int
	WaitForMaxTimeout time.Duration
	RecordingDir     string   // empty disables recording even when CreateConfig.Record is set
	CommandWhitelist []string // empty means unrestricted
	Headless         bool     // true forces every create() to skip the visual mirror
}

// commandAllowed reports whether argv[0] may be spawned.
func (c ManagerConfig) commandAllowed(command string) bool {
	if len(c.CommandWhitelist) == 0 {
		return true
	}
	for _, allowed := range c.CommandWhitelist {
		if allowed == command {
			return true
		}
	}
	return false
}

func (c ManagerConfig) withDefaults() ManagerConfig {
	if c.MaxSessions <= 0 {
		c.MaxSessions = 16
	}
	if c.RingCapacity <= 0 {
		c.RingCapacity = 1 << 20
	}
	if c.WaitForMaxTimeout <= 0 {
		c.WaitForMaxTimeout = 5 * time.Minute
	}
	return c
}

// Manager owns the SessionId -> Session mapping, guarded by a single
// reader-preferring lock with per-session interior mutability, per
// spec.md §4.5/§5.
type Manager struct {
	cfg ManagerConfig

	mu       sync.RWMutex
	sessions map[SessionID]*Session
}

func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		cfg:      cfg.withDefaults(),
		sessions: make(map[SessionID]*Session),
	}
}

// Create spawns a PTY running cfg.Command and registers a new Session.
func (m *Manager) Create(cfg CreateConfig) (SessionID, error) {
	m.mu.Lock()
	if len(m.sessions) >= m.cfg.MaxSessions {
		m.mu.Unlock()
		return "", apperr.New(apperr.ResourceExhausted, fmt.Sprintf("max_sessions (%d) reached", m.cfg.MaxSessions))
	}
	m.mu.Unlock()

	argv := resolveCommand(cfg.Command)
	if len(argv) > 0 && !m.cfg.commandAllowed(argv[0]) {
		return "", apperr.New(apperr.CommandNotAllowed, fmt.Sprintf("command %q is not in the whitelist", argv[0]))
	}
	env := make([]string, 0, len(cfg.Env))
	for k, v := range cfg.Env {
		env = append(env, k+"="+v)
	}

	pt, err := ptyio.Spawn(ptyio.SessionConfig{
		Command: argv,
		Env:     env,
		Dir:     cfg.Cwd,
		Rows:    cfg.Rows,
		Cols:    cfg.Cols,
	})
	if err != nil {
		return "", err
	}

	id := SessionID(uuid.NewString())

	var rec *recorder
	if cfg.Record && m.cfg.RecordingDir != "" {
		path := m.cfg.RecordingDir + string(os.PathSeparator) + string(id) + ".cast"
		f, ferr := os.Create(path)
		if ferr == nil {
			rec, _ = newRecorder(f, cfg.Cols, cfg.Rows)
		}
	}

	s := newSession(id, cfg, pt, m.cfg.RingCapacity, rec)

	if cfg.Visual && !m.cfg.Headless {
		if err := spawnVisualMirror(string(id), cfg.TerminalEmulator); err != nil {
			s.visualError = err.Error()
		} else {
			s.visualMode = true
		}
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	go s.pump()

	return id, nil
}

// List returns a point-in-time snapshot of every registered session.
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.info())
	}
	return out
}

func (m *Manager) get(id SessionID) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, apperr.New(apperr.NotFound, fmt.Sprintf("unknown session %q", id))
	}
	return s, nil
}

// Close kills the session's child process and removes it from the
// registry. Idempotent per spec.md §4.5: closing an unknown id fails
// with NotFound; closing again after that first success also reports
// NotFound since the id no longer resolves.
func (m *Manager) Close(ctx context.Context, id SessionID) error {
	s, err := m.get(id)
	if err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return s.Close(ctx)
}

func (m *Manager) Resize(id SessionID, rows, cols int) error {
	s, err := m.get(id)
	if err != nil {
		return err
	}
	return s.Resize(rows, cols)
}

func (m *Manager) Type(id SessionID, text string) error {
	s, err := m.get(id)
	if err != nil {
		return err
	}
	return s.Type(text)
}

func (m *Manager) PressKey(id SessionID, keySpec string, count int) error {
	s, err := m.get(id)
	if err != nil {
		return err
	}
	return s.PressKey(keySpec, count)
}

func (m *Manager) Click(id SessionID, ref string) (ClickResult, error) {
	s, err := m.get(id)
	if err != nil {
		return ClickResult{}, err
	}
	return s.Click(ref)
}

func (m *Manager) Snapshot(id SessionID, opts SnapshotOptions) (TerminalStateTree, error) {
	s, err := m.get(id)
	if err != nil {
		return TerminalStateTree{}, err
	}
	return s.Snapshot(opts)
}

func (m *Manager) ReadOutput(id SessionID, maxBytes int) (string, error) {
	s, err := m.get(id)
	if err != nil {
		return "", err
	}
	return s.ReadOutput(maxBytes), nil
}

// StyledRuns exposes a session's lossless styled-run rendering, used by
// the debug visual mirror.
func (m *Manager) StyledRuns(id SessionID) ([]vt.Run, vt.Dimensions, error) {
	s, err := m.get(id)
	if err != nil {
		return nil, vt.Dimensions{}, err
	}
	return s.StyledRuns()
}

// MaxWaitTimeout exposes the configured ceiling; the MCP dispatch layer
// uses it as the timeout when the caller supplies none. WaitFor itself
// caps any larger timeout at this value.
func (m *Manager) MaxWaitTimeout() time.Duration { return m.cfg.WaitForMaxTimeout }
