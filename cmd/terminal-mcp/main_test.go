package main

import "testing"

func TestRun_VersionFlagExitsOK(t *testing.T) {
	if code := run([]string{"-version"}); code != exitOK {
		t.Errorf("run(-version) = %d, want %d", code, exitOK)
	}
}

func TestRun_HelpFlagExitsOK(t *testing.T) {
	if code := run([]string{"-help"}); code != exitOK {
		t.Errorf("run(-help) = %d, want %d", code, exitOK)
	}
}

func TestRun_UnknownFlagIsStartupError(t *testing.T) {
	if code := run([]string{"-bogus-flag"}); code != exitStartupError {
		t.Errorf("run(-bogus-flag) = %d, want %d", code, exitStartupError)
	}
}

func TestRun_MissingConfigFileIsStartupError(t *testing.T) {
	if code := run([]string{"-config", "/nonexistent/path/config.yaml"}); code != exitStartupError {
		t.Errorf("run(-config missing) = %d, want %d", code, exitStartupError)
	}
}
