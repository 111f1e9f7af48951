// Package audio discovers capture sources for the supported audio backends.
package audio

import "github.com/oszuidwest/zwfm-screengrab/internal/capture"

// Device represents an available audio input source.
type Device struct {
	// Backend is the audio system the source belongs to.
	Backend capture.AudioBackend `json:"backend"`
	// ID is the identifier passed to FFmpeg's -i option.
	ID string `json:"id"`
	// Name is the device display name.
	Name string `json:"name"`
}
