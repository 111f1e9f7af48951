package capture

import (
	"fmt"
	"strconv"
)

// Frame rates per result type.
const (
	videoFramerate = 60
	stillFramerate = 1
)

// VA-API encode pipeline settings.
const (
	vaapiFilter  = "format=nv12,hwupload"
	vaapiBitrate = "320k"
	vaapiCodec   = "h264_vaapi"
	nvencCodec   = "h264_nvenc"
)

// Compile validates cfg and returns the ordered FFmpeg arguments.
// Capture-source flags come first, then format and accelerator flags, then output flags.
// On error no arguments are returned.
func Compile(cfg Config) (Command, error) {
	if err := validate(cfg); err != nil {
		return Command{}, err
	}

	framerate := stillFramerate
	if cfg.resultType == ResultVideo {
		framerate = videoFramerate
	}

	args := []string{
		"-video_size", cfg.size.String(),
		"-framerate", strconv.Itoa(framerate),
		"-loglevel", "error",
		"-f", "x11grab",
		"-i", cfg.displayName() + "+" + cfg.position.String(),
	}

	switch cfg.resultType {
	case ResultVideo:
		args = append(args, videoArgs(cfg)...)
	case ResultStillJPEG, ResultStillPNG:
		// Audio and acceleration do not apply to single frames.
		args = append(args, "-vframes", "1")
	}

	args = append(args,
		"-y",
		"-bf", "0",
		"-f", outputFormat(cfg.resultType),
		cfg.output.Destination(),
	)

	return Command{
		Args:          args,
		InheritStdout: cfg.output.IsStream(),
	}, nil
}

// validate reports the first missing required field.
func validate(cfg Config) error {
	switch {
	case cfg.resultType == ResultUnset:
		return fmt.Errorf("%w: result type not set", ErrIncompleteConfiguration)
	case cfg.size == nil:
		return fmt.Errorf("%w: size not set", ErrIncompleteConfiguration)
	case cfg.position == nil:
		return fmt.Errorf("%w: position not set", ErrIncompleteConfiguration)
	case cfg.output.Kind == OutputFile && cfg.output.Path == "":
		return fmt.Errorf("%w: output path not set", ErrIncompleteConfiguration)
	case cfg.recordAudio && cfg.audioDevice == nil:
		return ErrMissingAudioDevice
	}
	return nil
}

// videoArgs returns the audio and accelerator blocks for video captures.
func videoArgs(cfg Config) []string {
	var args []string

	if cfg.recordAudio {
		dev := cfg.audioDevice
		args = append(args,
			"-f", dev.Backend.String(),
			"-ac", dev.Channels.Count(),
			"-i", dev.Identifier,
		)
	}

	switch cfg.accel {
	case AccelVAAPI:
		args = append(args,
			"-hwaccel", "vaapi",
			"-vaapi_device", cfg.vaapiDevicePath(),
			"-vf", vaapiFilter,
			"-bit_rate", vaapiBitrate,
			"-c:v", vaapiCodec,
		)
	case AccelNVENC:
		args = append(args, "-vcodec", nvencCodec)
	}

	return args
}

// outputFormat returns the FFmpeg muxer for the result type.
func outputFormat(t ResultType) string {
	switch t {
	case ResultStillJPEG:
		return "mjpeg"
	case ResultStillPNG:
		return "apng"
	default:
		return "mp4"
	}
}
