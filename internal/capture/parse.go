package capture

import (
	"fmt"
	"strconv"
	"strings"
)

// unrecognized wraps ErrUnrecognizedValue with the kind of value and the offending token.
func unrecognized(kind, token string) error {
	return fmt.Errorf("%w: %s %q", ErrUnrecognizedValue, kind, token)
}

// normalize lowercases and trims a raw token for case-insensitive matching.
func normalize(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

// ParseResultType parses a result type token such as "mp4", "jpg" or "png".
func ParseResultType(token string) (ResultType, error) {
	switch normalize(token) {
	case "mp4", "video":
		return ResultVideo, nil
	case "jpg", "jpeg":
		return ResultStillJPEG, nil
	case "png":
		return ResultStillPNG, nil
	default:
		return ResultUnset, unrecognized("result type", token)
	}
}

// ParseHardwareAccel parses an accelerator token.
// Vendor names are accepted as aliases: "intel" and "amd" select VA-API, "nvidia" selects NVENC.
func ParseHardwareAccel(token string) (HardwareAccel, error) {
	switch normalize(token) {
	case "none", "software", "":
		return AccelNone, nil
	case "vaapi", "intel", "amd":
		return AccelVAAPI, nil
	case "nvenc", "nvidia":
		return AccelNVENC, nil
	default:
		return AccelNone, unrecognized("hardware acceleration", token)
	}
}

// ParseAudioBackend parses an audio backend token ("pulse", "alsa" or "jack").
func ParseAudioBackend(token string) (AudioBackend, error) {
	switch normalize(token) {
	case "pulse", "pulseaudio":
		return BackendPulse, nil
	case "alsa":
		return BackendALSA, nil
	case "jack":
		return BackendJACK, nil
	default:
		return BackendPulse, unrecognized("audio backend", token)
	}
}

// ParseChannels parses a channel token ("1", "mono", "2" or "stereo").
func ParseChannels(token string) (Channels, error) {
	switch normalize(token) {
	case "1", "mono":
		return Mono, nil
	case "2", "stereo":
		return Stereo, nil
	default:
		return Stereo, unrecognized("audio channels", token)
	}
}

// ParseOutput parses a destination argument. The stream marker "-" selects standard output.
func ParseOutput(token string) (Output, error) {
	token = strings.TrimSpace(token)
	switch token {
	case "":
		return Output{}, unrecognized("output", token)
	case StreamMarker:
		return StreamOutput(), nil
	default:
		return FileOutput(token), nil
	}
}

// ParseSize parses "W,H" or "WxH" into a Size with positive dimensions.
func ParseSize(token string) (Size, error) {
	sep := ","
	if !strings.Contains(token, sep) {
		sep = "x"
	}
	w, h, err := parsePair(normalize(token), sep)
	if err != nil || w <= 0 || h <= 0 {
		return Size{}, unrecognized("size", token)
	}
	return Size{Width: w, Height: h}, nil
}

// ParsePosition parses "X,Y" into a Position with non-negative coordinates.
func ParsePosition(token string) (Position, error) {
	x, y, err := parsePair(normalize(token), ",")
	if err != nil || x < 0 || y < 0 {
		return Position{}, unrecognized("position", token)
	}
	return Position{X: x, Y: y}, nil
}

// parsePair splits token on sep into exactly two integers.
func parsePair(token, sep string) (a, b int, err error) {
	parts := strings.Split(token, sep)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected two values separated by %q", sep)
	}
	if a, err = strconv.Atoi(strings.TrimSpace(parts[0])); err != nil {
		return 0, 0, err
	}
	if b, err = strconv.Atoi(strings.TrimSpace(parts[1])); err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
