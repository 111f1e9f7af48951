package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

// MinimumVersion is the oldest FFmpeg release known to accept every emitted option.
const MinimumVersion = "v4.0.0"

// probeTimeout bounds each FFmpeg invocation made while probing.
const probeTimeout = 5 * time.Second

// Accelerated encoders checked by Probe.
const (
	EncoderVAAPI = "h264_vaapi"
	EncoderNVENC = "h264_nvenc"
)

// versionPattern extracts the release number from "ffmpeg version 6.1.1-3ubuntu5 ...".
var versionPattern = regexp.MustCompile(`ffmpeg version n?(\d+(?:\.\d+){0,2})`)

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// ProbeResult describes an FFmpeg installation.
type ProbeResult struct {
	Path     string
	Version  string // Canonical semver, e.g. "v6.1.1"; empty for git builds
	Raw      string // First line of `ffmpeg -version`
	Encoders map[string]bool
}

// Supported reports whether the probed version meets MinimumVersion.
// Unversioned (git snapshot) builds are assumed to be recent enough.
func (r ProbeResult) Supported() bool {
	if r.Version == "" {
		return true
	}
	return semver.Compare(r.Version, MinimumVersion) >= 0
}

// HasEncoder reports whether FFmpeg lists the named video encoder.
func (r ProbeResult) HasEncoder(name string) bool {
	return r.Encoders[name]
}

// Probe inspects the FFmpeg binary at ffmpegPath.
func Probe(ctx context.Context, ffmpegPath string, run Runner) (ProbeResult, error) {
	if run == nil {
		run = ExecRunner
	}
	result := ProbeResult{Path: ffmpegPath}

	versionCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	out, err := run(versionCtx, ffmpegPath, "-hide_banner", "-version")
	if err != nil {
		return result, fmt.Errorf("ffmpeg -version: %w", err)
	}
	result.Raw, result.Version = ParseVersion(string(out))

	encodersCtx, cancelEncoders := context.WithTimeout(ctx, probeTimeout)
	defer cancelEncoders()
	out, err = run(encodersCtx, ffmpegPath, "-hide_banner", "-encoders")
	if err != nil {
		return result, fmt.Errorf("ffmpeg -encoders: %w", err)
	}
	result.Encoders = ParseEncoders(string(out))

	return result, nil
}

// ParseVersion returns the first output line and the canonical semver it names, if any.
func ParseVersion(output string) (line, version string) {
	line, _, _ = strings.Cut(strings.TrimSpace(output), "\n")
	line = strings.TrimSpace(line)

	matches := versionPattern.FindStringSubmatch(line)
	if len(matches) < 2 {
		return line, ""
	}
	v := semver.Canonical("v" + matches[1])
	return line, v
}

// ParseEncoders returns the set of video encoders in `ffmpeg -encoders` output.
func ParseEncoders(output string) map[string]bool {
	encoders := make(map[string]bool)
	for line := range strings.SplitSeq(output, "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) < 2 {
			continue
		}
		// Lines look like " V....D h264_nvenc  NVIDIA NVENC H.264 encoder".
		if len(fields[0]) == 6 && strings.HasPrefix(fields[0], "V") && fields[1] != "=" {
			encoders[fields[1]] = true
		}
	}
	return encoders
}
