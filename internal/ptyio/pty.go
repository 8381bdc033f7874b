// Package ptyio wraps a cross-platform pseudo-terminal (Unix PTY or
// Windows ConPTY) behind the spawn/read/write/resize/kill operations
// spec.md §4.4 names, built on github.com/aymanbagabas/go-pty exactly as
// the teacher's internal/terminal/session.go does.
package ptyio

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"

	gopty "github.com/aymanbagabas/go-pty"

	"github.com/patrick-goecommerce/terminal-mcp/internal/apperr"
)

// SessionConfig describes a process to spawn inside a new PTY.
type SessionConfig struct {
	Command []string // argv[0] plus arguments; argv[0] resolved against PATH
	Env     []string // additional environment variables, appended to the inherited env
	Dir     string    // working directory; empty means inherit the daemon's cwd
	Rows    int
	Cols    int
	// KittyKeyboard enables the kitty keyboard protocol (CSI > 1 u) right
	// after spawn, so modified keys (Shift+Enter etc.) arrive as distinct
	// CSI u sequences instead of being folded into plain bytes.
	KittyKeyboard bool
}

// GracePeriod is how long Kill waits after SIGTERM before escalating to
// SIGKILL (spec.md §4.4: "graceful-then-forced kill").
const GracePeriod = 500 * time.Millisecond

// PTY is a running child process attached to a pseudo-terminal.
type PTY struct {
	mu     sync.Mutex
	pty    gopty.Pty
	cmd    *gopty.Cmd
	done   chan struct{}
	exitCode int
	waitErr  error
}

// Spawn creates a PTY of the requested size and starts cfg.Command
// inside it. TERM and COLORTERM are always set so child processes see a
// capable terminal, matching the teacher's Session.Start.
func Spawn(cfg SessionConfig) (*PTY, error) {
	argv := cfg.Command
	if len(argv) == 0 {
		argv = defaultShell()
	}
	rows, cols := cfg.Rows, cfg.Cols
	if rows < 1 {
		rows = 24
	}
	if cols < 1 {
		cols = 80
	}

	p, err := gopty.New()
	if err != nil {
		return nil, apperr.Wrap(apperr.SpawnFailed, "open pty", err)
	}
	if err := p.Resize(cols, rows); err != nil {
		p.Close()
		return nil, apperr.Wrap(apperr.SpawnFailed, "resize pty", err)
	}

	fullEnv := append(os.Environ(), "TERM=xterm-256color", "COLORTERM=truecolor")
	fullEnv = append(fullEnv, cfg.Env...)

	cmd := p.Command(argv[0], argv[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = fullEnv

	if err := cmd.Start(); err != nil {
		p.Close()
		return nil, apperr.Wrap(apperr.SpawnFailed, "start process", err)
	}

	pt := &PTY{pty: p, cmd: cmd, done: make(chan struct{})}
	go pt.waitLoop()

	if cfg.KittyKeyboard {
		_, _ = pt.Write([]byte("\x1b[>1u"))
	}
	return pt, nil
}

func (pt *PTY) waitLoop() {
	err := pt.cmd.Wait()
	pt.mu.Lock()
	pt.waitErr = err
	if pt.cmd.ProcessState != nil {
		pt.exitCode = pt.cmd.ProcessState.ExitCode()
	} else if err != nil {
		pt.exitCode = 1
	}
	pt.mu.Unlock()
	close(pt.done)
}

// Read reads raw bytes produced by the child process. It blocks until
// output is available, the process exits, or the PTY is closed.
func (pt *PTY) Read(buf []byte) (int, error) {
	n, err := pt.pty.Read(buf)
	if err != nil {
		return n, apperr.Wrap(apperr.IoError, "pty read", err)
	}
	return n, nil
}

// Write sends raw bytes to the child process's stdin (keyboard input).
func (pt *PTY) Write(p []byte) (int, error) {
	n, err := pt.pty.Write(p)
	if err != nil {
		return n, apperr.Wrap(apperr.IoError, "pty write", err)
	}
	return n, nil
}

// Resize changes the PTY's reported window size.
func (pt *PTY) Resize(rows, cols int) error {
	if err := pt.pty.Resize(cols, rows); err != nil {
		return apperr.Wrap(apperr.IoError, "pty resize", err)
	}
	return nil
}

// Done returns a channel closed when the child process has exited.
func (pt *PTY) Done() <-chan struct{} { return pt.done }

// ExitCode returns the child's exit code. Valid only after Done() is closed.
func (pt *PTY) ExitCode() int {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return pt.exitCode
}

// Kill terminates the child process: SIGTERM, then SIGKILL if it hasn't
// exited within GracePeriod (spec.md §4.4). Always closes the PTY handle
// once the process has exited or the grace period lapses.
func (pt *PTY) Kill(ctx context.Context) error {
	pt.mu.Lock()
	cmd := pt.cmd
	p := pt.pty
	pt.mu.Unlock()

	if cmd.Process != nil {
		_ = cmd.Process.Signal(signalTerm())
	}

	select {
	case <-pt.done:
	case <-time.After(GracePeriod):
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		select {
		case <-pt.done:
		case <-ctx.Done():
			p.Close()
			return apperr.Wrap(apperr.IoError, "kill: context done waiting for exit", ctx.Err())
		}
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-pt.done
	}

	p.Close()
	return nil
}

// defaultShell returns the default shell command for the current OS,
// matching the teacher's internal/terminal/session.go defaultShell.
func defaultShell() []string {
	if runtime.GOOS == "windows" {
		if comspec := os.Getenv("COMSPEC"); comspec != "" {
			return []string{comspec}
		}
		return []string{"cmd.exe"}
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		return []string{shell}
	}
	return []string{"/bin/bash"}
}
