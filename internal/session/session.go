// Package session implements the Session Manager (spec.md §4.5): a
// registry of running PTY-backed terminals, each with its own VT grid,
// output ring buffer, and optional asciinema recording, exposing the
// create/list/close/resize/type/press_key/click/snapshot/wait_for/
// read_output operations the MCP tool surface dispatches onto.
//
// The concurrency shape follows the teacher's internal/terminal.Session:
// a per-session mutex guards interior state shared between the output-pump
// goroutine and tool-call operations, generalized here to a RWMutex at the
// registry level per spec.md §5's reader-preferring requirement.
package session

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/patrick-goecommerce/terminal-mcp/internal/apperr"
	"github.com/patrick-goecommerce/terminal-mcp/internal/detect"
	"github.com/patrick-goecommerce/terminal-mcp/internal/ptyio"
	"github.com/patrick-goecommerce/terminal-mcp/internal/vt"
)

// SessionID identifies a Session within a Manager's registry.
type SessionID string

// CreateConfig describes a session to spawn, mirroring the
// terminal_session_create tool's parameters (spec.md §6).
type CreateConfig struct {
	Command          []string
	Rows, Cols       int
	Visual           bool
	Cwd              string
	Env              map[string]string
	TerminalEmulator string
	Record           bool
}

// Info is the snapshot returned by list().
type Info struct {
	ID          SessionID
	Command     []string
	Rows, Cols  int
	Alive       bool
	CreatedAt   time.Time
	VisualMode  bool
	VisualError string
}

// Session is a single PTY-backed terminal: its grid, raw-output ring, and
// PTY handle, all guarded by mu so the output pump and tool-call
// operations never race (spec.md §5).
type Session struct {
	id      SessionID
	command []string

	mu       sync.Mutex
	pty      *ptyio.PTY
	grid     *vt.Grid
	handler  *vt.BasicHandler
	parser   *vt.Parser
	ring     *ringBuffer
	rec      *recorder
	engine   *detect.Engine
	activity Activity

	createdAt    time.Time
	lastOutputAt time.Time
	closed       bool

	notify chan struct{} // signaled on each output chunk and on close

	visualMode  bool
	visualError string
}

func newSession(id SessionID, cfg CreateConfig, pt *ptyio.PTY, ringCapacity int, rec *recorder) *Session {
	rows, cols := cfg.Rows, cfg.Cols
	if rows < 1 {
		rows = 24
	}
	if cols < 1 {
		cols = 80
	}
	grid := vt.NewGrid(rows, cols)
	handler := vt.NewBasicHandler(grid, pt)
	s := &Session{
		id:        id,
		command:   cfg.Command,
		pty:       pt,
		grid:      grid,
		handler:   handler,
		parser:    vt.NewParser(handler),
		ring:      newRingBuffer(ringCapacity),
		rec:       rec,
		engine:    detect.NewEngine(),
		createdAt: time.Now(),
		notify:    make(chan struct{}, 1),
	}
	return s
}

// pump reads PTY output until the process exits or the PTY is closed,
// feeding every chunk to the VT parser, the ring buffer, and the
// recorder, exactly as the teacher's Session.readLoop feeds s.Screen.
func (s *Session) pump() {
	buf := make([]byte, 4096)
	for {
		n, err := s.pty.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			s.mu.Lock()
			s.parser.Advance(chunk)
			s.ring.Write(chunk)
			s.lastOutputAt = time.Now()
			s.activity = ActivityActive
			s.mu.Unlock()
			s.rec.Write(chunk)
			s.signal()
		}
		if err != nil {
			break
		}
	}
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.signal()
}

func (s *Session) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// withGrid runs fn with the session mutex held, for operations that need
// a consistent read of grid + activity + closed state.
func (s *Session) withGrid(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// info captures a point-in-time Info for list().
func (s *Session) info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	dims := s.grid.Dimensions()
	return Info{
		ID:          s.id,
		Command:     s.command,
		Rows:        dims.Rows,
		Cols:        dims.Cols,
		Alive:       !s.closed,
		CreatedAt:   s.createdAt,
		VisualMode:  s.visualMode,
		VisualError: s.visualError,
	}
}

// Type writes text (UTF-8 encoded, per spec.md §4.5) to the PTY.
func (s *Session) Type(text string) error {
	if s.isClosed() {
		return apperr.New(apperr.SessionClosed, "session is closed")
	}
	if _, err := s.pty.Write([]byte(text)); err != nil {
		return err
	}
	return nil
}

// PressKey parses keySpec and writes the resulting bytes count times.
func (s *Session) PressKey(keySpec string, count int) error {
	if s.isClosed() {
		return apperr.New(apperr.SessionClosed, "session is closed")
	}
	if count < 1 {
		count = 1
	}
	b, err := ParseKeySpec(keySpec)
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		if _, err := s.pty.Write(b); err != nil {
			return err
		}
	}
	return nil
}

// Resize updates the PTY and grid to the new dimensions.
func (s *Session) Resize(rows, cols int) error {
	if s.isClosed() {
		return apperr.New(apperr.SessionClosed, "session is closed")
	}
	if rows < 1 || cols < 1 {
		return apperr.New(apperr.InvalidArgument, "rows and cols must be positive")
	}
	if err := s.pty.Resize(rows, cols); err != nil {
		return err
	}
	s.withGrid(func() {
		s.grid.Resize(rows, cols)
	})
	return nil
}

// SnapshotOptions configures snapshot(); see spec.md §4.5.
type SnapshotOptions struct {
	IncludeRaw  bool
	Region      *vt.Region
	SettleDelay time.Duration
}

// TerminalStateTree is the result of snapshot().
type TerminalStateTree struct {
	SessionID  SessionID
	Dimensions vt.Dimensions
	Cursor     vt.Position
	Elements   []detect.Element
	Raw        string // populated when IncludeRaw is set
	Activity   Activity
}

// Snapshot flushes pending PTY output up to opts.SettleDelay (default
// 50ms), then captures the grid and runs detection, per spec.md §4.5.
func (s *Session) Snapshot(opts SnapshotOptions) (TerminalStateTree, error) {
	if s.isClosed() {
		return TerminalStateTree{}, apperr.New(apperr.SessionClosed, "session is closed")
	}
	settle := opts.SettleDelay
	if settle <= 0 {
		settle = 50 * time.Millisecond
	}
	deadline := time.After(settle)
	select {
	case <-s.notify:
	case <-deadline:
	}

	var tree TerminalStateTree
	s.withGrid(func() {
		dims := s.grid.Dimensions()
		tree = TerminalStateTree{
			SessionID:  s.id,
			Dimensions: dims,
			Cursor:     s.grid.Cursor(),
			Elements:   s.engine.Detect(s.grid),
			Activity:   s.currentActivityLocked(),
		}
		if opts.IncludeRaw {
			tree.Raw = s.grid.PlainText()
		}
	})
	if opts.Region != nil {
		tree.Elements = filterByRegion(tree.Elements, *opts.Region)
	}
	return tree, nil
}

// StyledRuns returns the grid's lossless styled-run rendering alongside
// its current dimensions, for callers (the debug visual mirror) that
// render color/attributes instead of plain text.
func (s *Session) StyledRuns() ([]vt.Run, vt.Dimensions, error) {
	if s.isClosed() {
		return nil, vt.Dimensions{}, apperr.New(apperr.SessionClosed, "session is closed")
	}
	var (
		runs []vt.Run
		dims vt.Dimensions
	)
	s.withGrid(func() {
		runs = s.grid.StyledRuns()
		dims = s.grid.Dimensions()
	})
	return runs, dims, nil
}

func filterByRegion(elems []detect.Element, region vt.Region) []detect.Element {
	var out []detect.Element
	for _, e := range elems {
		if region.Overlaps(e.Region) {
			out = append(out, e)
		}
	}
	return out
}

// currentActivityLocked recomputes activity classification if the quiet
// period has elapsed, matching the teacher's DetectActivity quiet-window
// check. Caller must hold s.mu.
func (s *Session) currentActivityLocked() Activity {
	if s.lastOutputAt.IsZero() {
		return s.activity
	}
	if time.Since(s.lastOutputAt) < activityQuietPeriod {
		return s.activity
	}
	s.activity = classifyActivity(s.grid)
	return s.activity
}

// Click re-detects and synthesizes a click against ref, per spec.md §4.5.
func (s *Session) Click(ref string) (ClickResult, error) {
	if s.isClosed() {
		return ClickResult{}, apperr.New(apperr.SessionClosed, "session is closed")
	}
	var (
		bytesToSend []byte
		result      ClickResult
		err         error
	)
	s.withGrid(func() {
		elems := s.engine.Detect(s.grid)
		mouseEnabled := s.handler.MouseReportingEnabled()
		cur := s.grid.Cursor()
		bytesToSend, result, err = synthesizeClick(elems, ref, mouseEnabled, cur.Row, cur.Col)
	})
	if err != nil {
		return ClickResult{}, apperr.Wrap(apperr.InvalidArgument, "click", err)
	}
	if _, werr := s.pty.Write(bytesToSend); werr != nil {
		return ClickResult{}, werr
	}
	return result, nil
}

// ReadOutput drains up to maxBytes from the raw ring buffer.
func (s *Session) ReadOutput(maxBytes int) string {
	return string(s.ring.Drain(maxBytes))
}

// Close kills the child process, stops the recorder, and marks the
// session closed. Idempotent: closing twice is a no-op (the registry is
// responsible for rejecting a second close with NotFound).
func (s *Session) Close(ctx context.Context) error {
	err := s.pty.Kill(ctx)
	_ = s.rec.Close()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.signal()
	return err
}

// resolveCommand applies default-shell fallback the way
// ptyio.Spawn/defaultShell would, but session needs to know the resolved
// argv up front for Info.Command even before PTY spawn completes.
func resolveCommand(cmd []string) []string {
	if len(cmd) > 0 {
		return cmd
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		return []string{shell}
	}
	return []string{"/bin/bash"}
}
