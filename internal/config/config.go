// Package config loads and provides daemon configuration: resource caps
// and defaults for the session manager, read from an optional YAML file
// (spec.md §6's "--config <path>" flag) and merged with built-in
// defaults. There is no persisted runtime state (spec.md §6: "Persisted
// state: None") — only this static configuration is read from disk.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/patrick-goecommerce/terminal-mcp/internal/apperr"
)

// Config holds every user-configurable setting, per spec.md §5's
// Resource caps paragraph and §6's CLI/transport section.
type Config struct {
	// MaxSessions bounds how many concurrent sessions the manager will
	// allocate before create() fails with ResourceExhausted.
	MaxSessions int `yaml:"max_sessions"`

	// RingCapacityBytes is each session's fixed raw-output ring buffer
	// size; the oldest bytes are dropped on overflow.
	RingCapacityBytes int `yaml:"ring_capacity_bytes"`

	// WaitForMaxTimeoutMS caps any wait_for timeout_ms a caller supplies.
	WaitForMaxTimeoutMS int `yaml:"wait_for_max_timeout_ms"`

	// SnapshotSettleMS is loaded and clamped here but is not passed to
	// the session manager; snapshot() uses its own 50ms default settle
	// deadline.
	SnapshotSettleMS int `yaml:"snapshot_settle_ms"`

	// CommandWhitelist, if non-empty, restricts create()'s command[0] to
	// this set; an empty list means no restriction.
	CommandWhitelist []string `yaml:"command_whitelist"`

	// VisualTerminalEmulator is loaded here but is not passed to the
	// session manager; Visual-mode emulator auto-detection is overridden
	// only by a session's own CreateConfig.TerminalEmulator.
	VisualTerminalEmulator string `yaml:"visual_terminal_emulator"`

	// RecordingDir, if set, enables asciinema recording for sessions
	// created with Record=true, writing "<session_id>.cast" beneath it.
	RecordingDir string `yaml:"recording_dir"`

	// Headless forces headless mode regardless of per-session Visual
	// requests; set by the --headless CLI flag, not normally by file.
	Headless bool `yaml:"headless"`
}

// DefaultConfig returns the built-in defaults, matching spec.md §5's
// named defaults (max_sessions=16, ring capacity=1MiB) plus this
// design's own choices for the rest.
func DefaultConfig() Config {
	return Config{
		MaxSessions:         16,
		RingCapacityBytes:   1 << 20,
		WaitForMaxTimeoutMS: 5 * 60 * 1000,
		SnapshotSettleMS:    50,
		CommandWhitelist:    nil,
	}
}

// Load reads the YAML file at path, falling back to defaults for
// missing fields and clamping out-of-range values. An empty path
// returns DefaultConfig() unchanged; a path that fails to read or parse
// is an error (the CLI maps this to exit code 1, spec.md §6).
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, apperr.Wrap(apperr.InvalidArgument, "read config file", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, apperr.Wrap(apperr.InvalidArgument, "parse config file", err)
	}

	cfg.clamp()
	return cfg, nil
}

// writeDefaults marshals cfg as YAML to path, creating parent
// directories as needed. Used by tests to exercise the round trip; the
// CLI does not call it.
func writeDefaults(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "marshal config", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) clamp() {
	if c.MaxSessions < 1 {
		c.MaxSessions = 1
	}
	if c.RingCapacityBytes < 4096 {
		c.RingCapacityBytes = 4096
	}
	if c.WaitForMaxTimeoutMS < 1 {
		c.WaitForMaxTimeoutMS = 1000
	}
	if c.SnapshotSettleMS < 1 {
		c.SnapshotSettleMS = 50
	}
}

// CommandAllowed reports whether argv[0] may be spawned: true when the
// whitelist is empty (unrestricted), or when argv[0] appears in it.
func (c Config) CommandAllowed(command string) bool {
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
