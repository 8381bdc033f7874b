//go:build !windows

package ptyio

import (
	"os"
	"syscall"
)

// signalTerm returns the graceful-shutdown signal for the current
// platform: SIGTERM on Unix.
func signalTerm() os.Signal { return syscall.SIGTERM }
