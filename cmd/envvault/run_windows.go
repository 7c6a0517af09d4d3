//go:build windows

package main

import "os"

// terminateSignal returns the signal sent to the child process when its
// context deadline expires. Windows has no SIGTERM equivalent, so this
// falls back to an unconditional kill.
func terminateSignal() os.Signal {
	return os.Kill
}

// disableCoreDumps is a no-op on Windows: crash dumps are governed by
// Windows Error Reporting, which has no RLIMIT_CORE equivalent.
func disableCoreDumps() error {
	return nil
}
