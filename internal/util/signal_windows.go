//go:build windows

package util

import "os"

// ShutdownSignals returns the signals to listen for graceful shutdown.
func ShutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}

// GracefulSignal attempts graceful process termination.
// Windows cannot deliver SIGINT to a child, so this is a no-op and the caller's kill deadline applies.
func GracefulSignal(p *os.Process) error {
	return nil
}
