//go:build !windows

package main

import (
	"os"
	"syscall"
)

// terminateSignal returns the signal sent to the child process when its
// context deadline expires, giving it a chance to shut down gracefully
// before WaitDelay escalates to SIGKILL.
func terminateSignal() os.Signal {
	return syscall.SIGTERM
}

// disableCoreDumps sets RLIMIT_CORE to 0 so decrypted secrets injected
// into the child's environment cannot end up in a crash dump.
func disableCoreDumps() error {
	var limit syscall.Rlimit
	limit.Cur = 0
	limit.Max = 0
	return syscall.Setrlimit(syscall.RLIMIT_CORE, &limit)
}
