// Package capture builds FFmpeg x11grab command lines from typed capture settings.
package capture

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for capture configuration.
var (
	// ErrUnrecognizedValue is returned when a raw token does not name a known value.
	ErrUnrecognizedValue = errors.New("unrecognized value")

	// ErrIncompleteConfiguration is returned when a required field is unset at compile time.
	ErrIncompleteConfiguration = errors.New("incomplete configuration")

	// ErrMissingAudioDevice is returned when audio recording is enabled without a device.
	ErrMissingAudioDevice = errors.New("audio recording requested without an audio device")
)

// ResultType selects what the capture produces.
type ResultType int

const (
	// ResultUnset means no result type has been chosen yet.
	ResultUnset ResultType = iota
	// ResultVideo records an MP4 video.
	ResultVideo
	// ResultStillJPEG grabs a single JPEG frame.
	ResultStillJPEG
	// ResultStillPNG grabs a single PNG frame.
	ResultStillPNG
)

// String returns the canonical token for the result type.
func (r ResultType) String() string {
	switch r {
	case ResultVideo:
		return "mp4"
	case ResultStillJPEG:
		return "jpg"
	case ResultStillPNG:
		return "png"
	default:
		return "unset"
	}
}

// IsStill reports whether the result type is a single-frame image.
func (r ResultType) IsStill() bool {
	return r == ResultStillJPEG || r == ResultStillPNG
}

// HardwareAccel selects the video encoding backend.
type HardwareAccel int

const (
	// AccelNone uses FFmpeg's default software encoder.
	AccelNone HardwareAccel = iota
	// AccelVAAPI encodes through a VA-API render node (Intel, AMD).
	AccelVAAPI
	// AccelNVENC encodes with NVIDIA NVENC.
	AccelNVENC
)

// String returns the canonical token for the accelerator.
func (a HardwareAccel) String() string {
	switch a {
	case AccelVAAPI:
		return "vaapi"
	case AccelNVENC:
		return "nvenc"
	default:
		return "none"
	}
}

// AudioBackend is the FFmpeg input format used for audio capture.
type AudioBackend int

const (
	// BackendPulse captures from a PulseAudio (or PipeWire-pulse) source.
	BackendPulse AudioBackend = iota
	// BackendALSA captures from an ALSA PCM device.
	BackendALSA
	// BackendJACK captures from JACK ports.
	BackendJACK
)

// String returns the FFmpeg input format name for the backend.
func (b AudioBackend) String() string {
	switch b {
	case BackendALSA:
		return "alsa"
	case BackendJACK:
		return "jack"
	default:
		return "pulse"
	}
}

// MarshalText encodes the backend as its FFmpeg input format name.
func (b AudioBackend) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// Channels is the number of recorded audio channels.
type Channels int

const (
	// Stereo records two channels.
	Stereo Channels = iota
	// Mono records one channel.
	Mono
)

// Count returns the channel count as passed to FFmpeg's -ac option.
func (c Channels) Count() string {
	if c == Mono {
		return "1"
	}
	return "2"
}

// String returns the canonical token for the channel layout.
func (c Channels) String() string {
	if c == Mono {
		return "mono"
	}
	return "stereo"
}

// AudioDevice describes the audio source recorded alongside video.
type AudioDevice struct {
	Backend    AudioBackend
	Identifier string // Backend-specific source name, e.g. a pulse source or "hw:0,0"
	Channels   Channels
}

// Size is the width and height of the captured region in pixels.
type Size struct {
	Width  int
	Height int
}

// String formats the size as FFmpeg's -video_size value.
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Position is the top-left corner of the captured region.
type Position struct {
	X int
	Y int
}

// String formats the position as the x11grab offset suffix.
func (p Position) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// OutputKind distinguishes file outputs from stdout streaming.
type OutputKind int

const (
	// OutputFile writes to a path.
	OutputFile OutputKind = iota
	// OutputStream writes to standard output.
	OutputStream
)

// StreamMarker is the destination token FFmpeg treats as standard output.
const StreamMarker = "-"

// Output is the capture destination.
type Output struct {
	Kind OutputKind
	Path string // Set when Kind is OutputFile
}

// FileOutput returns an output that writes to path. The stream marker selects standard output.
func FileOutput(path string) Output {
	if path == StreamMarker {
		return StreamOutput()
	}
	return Output{Kind: OutputFile, Path: path}
}

// StreamOutput returns an output that writes to standard output.
func StreamOutput() Output {
	return Output{Kind: OutputStream}
}

// IsStream reports whether the output goes to standard output.
func (o Output) IsStream() bool {
	return o.Kind == OutputStream || o.Path == StreamMarker
}

// Destination returns the final FFmpeg argument for the output.
func (o Output) Destination() string {
	if o.IsStream() {
		return StreamMarker
	}
	return o.Path
}

// Command is a compiled FFmpeg invocation.
type Command struct {
	// Args are passed verbatim, in order, to the FFmpeg binary.
	Args []string
	// InheritStdout reports whether FFmpeg must write to our standard output.
	InheritStdout bool
}

// String renders the arguments as a shell-quoted line for previews.
func (c Command) String() string {
	quoted := make([]string, len(c.Args))
	for i, arg := range c.Args {
		quoted[i] = shellQuote(arg)
	}
	return strings.Join(quoted, " ")
}

// shellQuote quotes arg for POSIX shells when it contains anything beyond a safe set.
func shellQuote(arg string) string {
	if arg == "" {
		return "''"
	}
	if strings.IndexFunc(arg, needsQuoting) < 0 {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}

func needsQuoting(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	default:
		return !strings.ContainsRune("-_.,:/+=@%", r)
	}
}
