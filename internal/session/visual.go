package session

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog/log"
)

// spawnVisualMirror launches a native terminal window attached to the
// same PTY via tmux, per spec.md §4.5's Visual-mode bullet: auto-detect
// an available emulator (iTerm2/Terminal.app on macOS, gnome-terminal/
// konsole/alacritty/kitty/xterm on Linux, wt.exe on Windows/WSL), spawn it
// running "tmux attach" against the session's tmux socket, and never fail
// create() if the window can't be opened — downgrade to headless instead.
//
// Treat the window strictly as a read-only observer (spec.md §9 design
// note): input is never routed through it, only through the PTY the
// session already owns.
func spawnVisualMirror(tmuxSocket, override string) error {
	candidates := visualEmulatorCandidates(override)
	var lastErr error
	for _, c := range candidates {
		cmd := exec.Command(c[0], append(c[1:], "tmux", "-S", tmuxSocket, "attach")...)
		cmd.Stdin = nil
		cmd.Stdout = nil
		cmd.Stderr = nil
		if err := cmd.Start(); err != nil {
			lastErr = err
			continue
		}
		go func() { _ = cmd.Wait() }()
		return nil
	}
	if lastErr == nil {
		lastErr = errNoEmulatorFound
	}
	log.Warn().Err(lastErr).Msg("visual mirror window failed to spawn, continuing headless")
	return lastErr
}

var errNoEmulatorFound = visualErr("no terminal emulator found")

type visualErr string

func (e visualErr) Error() string { return string(e) }

// visualEmulatorCandidates returns argv prefixes (binary + fixed flags,
// minus the trailing "tmux -S <socket> attach" which the caller appends)
// to try in order, honoring an explicit override first.
func visualEmulatorCandidates(override string) [][]string {
	if override != "" {
		return [][]string{{override, "-e"}}
	}
	switch runtime.GOOS {
	case "darwin":
		return [][]string{
			{"open", "-a", "iTerm"},
			{"open", "-a", "Terminal"},
		}
	case "windows":
		return [][]string{{"wt.exe"}}
	default:
		if os.Getenv("DISPLAY") == "" {
			return nil
		}
		return [][]string{
			{"gnome-terminal", "--"},
			{"konsole", "-e"},
			{"alacritty", "-e"},
			{"kitty"},
			{"xterm", "-e"},
		}
	}
}
