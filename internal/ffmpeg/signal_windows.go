//go:build windows

package ffmpeg

import "os/exec"

// signalNumber always returns 0; Windows processes are not terminated by signals.
func signalNumber(*exec.ExitError) int {
	return 0
}
