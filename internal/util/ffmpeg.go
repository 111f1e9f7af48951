package util

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrFFmpegNotFound is returned when no usable FFmpeg binary can be located.
var ErrFFmpegNotFound = errors.New("ffmpeg not found")

// ResolveFFmpegPath returns the path to the FFmpeg binary.
// If customPath is set, it must resolve to an executable; otherwise "ffmpeg" is looked up in PATH.
func ResolveFFmpegPath(customPath string) (string, error) {
	name := "ffmpeg"
	if customPath != "" {
		name = customPath
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrFFmpegNotFound, name)
	}
	return path, nil
}
