package util

import (
	"fmt"
	"regexp"
	"strings"
)

// maxErrorLineLength is the maximum length for extracted error messages.
const maxErrorLineLength = 200

// componentPrefix matches FFmpeg's "[x11grab @ 0x55d0c8a4c0]" log prefix.
var componentPrefix = regexp.MustCompile(`^\[[^\]]+ @ 0x[0-9a-fA-F]+\]\s*`)

// WrapError wraps an error with a descriptive operation context.
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}

// ExtractLastError extracts the last meaningful line from FFmpeg's stderr,
// without the component address prefix.
func ExtractLastError(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(componentPrefix.ReplaceAllString(strings.TrimSpace(lines[i]), ""))
		if line == "" {
			continue
		}
		if len(line) > maxErrorLineLength {
			return line[:maxErrorLineLength] + "..."
		}
		return line
	}
	return ""
}
