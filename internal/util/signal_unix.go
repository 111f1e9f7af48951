//go:build !windows

package util

import (
	"os"
	"syscall"
)

// ShutdownSignals returns the signals that stop a running capture.
// SIGHUP is included so closing the terminal still finalizes the output file.
func ShutdownSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP}
}

// GracefulSignal asks FFmpeg to stop. On SIGINT FFmpeg flushes and writes the
// container trailer, which MP4 output needs to be playable.
func GracefulSignal(p *os.Process) error {
	if p == nil {
		return os.ErrProcessDone
	}
	return p.Signal(syscall.SIGINT)
}
