//go:build !windows

package ffmpeg

import (
	"os/exec"
	"syscall"
)

// signalNumber returns the signal that terminated the process, or 0.
func signalNumber(exitErr *exec.ExitError) int {
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return int(status.Signal())
	}
	return 0
}
