// Command terminal-mcp runs the terminal-mcp daemon: a line-delimited
// JSON-RPC 2.0 server over stdin/stdout exposing PTY-backed terminal
// sessions with VT emulation and UI-element detection, per spec.md §6.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/patrick-goecommerce/terminal-mcp/internal/applog"
	"github.com/patrick-goecommerce/terminal-mcp/internal/config"
	"github.com/patrick-goecommerce/terminal-mcp/internal/mcp"
	"github.com/patrick-goecommerce/terminal-mcp/internal/session"
)

// Version is set at build time via ldflags:
//
//	-ldflags "-X main.Version=1.0.0"
//
// When not set, it defaults to "dev".
var Version = "dev"

const (
	exitOK             = 0
	exitStartupError   = 1
	exitFatalRuntime   = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("terminal-mcp", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		headless   bool
		configPath string
		showVer    bool
	)
	fs.BoolVar(&headless, "headless", false, "force headless mode regardless of per-session visual requests")
	fs.StringVar(&configPath, "config", "", "path to an optional YAML config file")
	fs.BoolVar(&showVer, "version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitStartupError
	}

	if showVer {
		fmt.Fprintln(os.Stdout, "terminal-mcp "+Version)
		return exitOK
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "terminal-mcp: config error:", err)
		return exitStartupError
	}
	if headless {
		cfg.Headless = true
	}
	if runtime.GOOS == "linux" && os.Getenv("DISPLAY") == "" {
		cfg.Headless = true
	}

	logger, err := applog.Init("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "terminal-mcp: logging error:", err)
		return exitStartupError
	}
	logger.Info().Str("version", Version).Bool("headless", cfg.Headless).Msg("terminal-mcp starting")

	mgr := session.NewManager(session.ManagerConfig{
		MaxSessions:       cfg.MaxSessions,
		RingCapacity:      cfg.RingCapacityBytes,
		WaitForMaxTimeout: time.Duration(cfg.WaitForMaxTimeoutMS) * time.Millisecond,
		RecordingDir:      cfg.RecordingDir,
		CommandWhitelist:  cfg.CommandWhitelist,
		Headless:          cfg.Headless,
	})

	dispatcher := mcp.NewDispatcher(mgr)
	server := mcp.NewServer(dispatcher, os.Stdin, os.Stdout)

	if err := server.Serve(); err != nil {
		logger.Error().Err(err).Msg("fatal runtime error")
		return exitFatalRuntime
	}
	return exitOK
}
