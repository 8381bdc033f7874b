package applog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestLevelFromEnv_Default(t *testing.T) {
	t.Setenv(levelEnvVar, "")
	if got := levelFromEnv(); got != zerolog.InfoLevel {
		t.Errorf("levelFromEnv() = %v, want InfoLevel", got)
	}
}

func TestLevelFromEnv_Debug(t *testing.T) {
	t.Setenv(levelEnvVar, "debug")
	if got := levelFromEnv(); got != zerolog.DebugLevel {
		t.Errorf("levelFromEnv() = %v, want DebugLevel", got)
	}
}

func TestLevelFromEnv_UnknownFallsBackToInfo(t *testing.T) {
	t.Setenv(levelEnvVar, "bogus")
	if got := levelFromEnv(); got != zerolog.InfoLevel {
		t.Errorf("levelFromEnv() = %v, want InfoLevel", got)
	}
}

func TestInit_WritesToFileSinkWhenGiven(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")

	logger, err := Init(path)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	logger.Info().Msg("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected the file sink to contain the logged line")
	}
}
