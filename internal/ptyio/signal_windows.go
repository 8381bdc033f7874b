//go:build windows

package ptyio

import "os"

// signalTerm returns the graceful-shutdown signal for the current
// platform. Windows processes have no SIGTERM equivalent deliverable via
// os.Process.Signal; os.Interrupt is the closest portable analogue, and
// the SIGKILL escalation after GracePeriod covers the rest.
func signalTerm() os.Signal { return os.Interrupt }
