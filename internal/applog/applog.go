// Package applog configures the daemon's structured logger. Every log
// line goes to stderr — stdout carries only JSON-RPC frames (spec.md
// §6) — with an optional additional file sink, mirroring the teacher's
// InitLoggingFromConfig/setupFileLogging idiom.
package applog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// levelEnvVar is the environment variable that controls verbosity, per
// spec.md §6's logging paragraph.
const levelEnvVar = "TERMINAL_MCP_LOG"

// Init builds the process-wide zerolog.Logger and installs it as the
// package-level log.Logger, from TERMINAL_MCP_LOG (default "info") and
// an optional extra file sink at filePath (empty disables it).
func Init(filePath string) (zerolog.Logger, error) {
	level := levelFromEnv()

	var w io.Writer = os.Stderr
	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Logger{}, err
		}
		w = io.MultiWriter(os.Stderr, f)
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	log.Logger = logger
	return logger, nil
}

func levelFromEnv() zerolog.Level {
	switch os.Getenv(levelEnvVar) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}
