package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/oszuidwest/zwfm-screengrab/internal/capture"
	"github.com/oszuidwest/zwfm-screengrab/internal/config"
	"github.com/oszuidwest/zwfm-screengrab/internal/eventlog"
	"github.com/oszuidwest/zwfm-screengrab/internal/ffmpeg"
	"github.com/oszuidwest/zwfm-screengrab/internal/upload"
	"github.com/oszuidwest/zwfm-screengrab/internal/util"
)

// captureOptions holds the raw capture flags before they are parsed into typed values.
type captureOptions struct {
	resultType    string
	position      string
	size          string
	acceleration  string
	audio         bool
	audioBackend  string
	audioDevice   string
	audioChannels string
	ffmpegPath    string
	dryRun        bool
	upload        bool

	// audioDeviceSet records whether --audio-device was given explicitly.
	audioDeviceSet bool
}

func (o *captureOptions) bindFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&o.resultType, "type", "t", config.DefaultResultType, "Type of screengrab (mp4, jpg, png)")
	flags.StringVarP(&o.position, "position", "p", "0,0", "Position of screengrab as X,Y")
	flags.StringVarP(&o.size, "size", "s", "", "Size of screengrab as WIDTH,HEIGHT")
	flags.StringVarP(&o.acceleration, "acceleration", "a", config.DefaultAcceleration, "Hardware acceleration for video (none, vaapi, nvenc)")
	flags.BoolVar(&o.audio, "audio", false, "Record audio with video captures")
	flags.StringVar(&o.audioBackend, "audio-backend", config.DefaultAudioBackend, "Audio backend (pulse, alsa, jack); implies --audio")
	flags.StringVar(&o.audioDevice, "audio-device", "", "Audio device identifier")
	flags.StringVar(&o.audioChannels, "audio-channels", config.DefaultAudioChannels, "Audio channels to record (1, 2, mono, stereo)")
	flags.StringVar(&o.ffmpegPath, "ffmpeg", "", "Path to the FFmpeg binary")
	flags.BoolVar(&o.dryRun, "dry-run", false, "Print the FFmpeg command instead of running it")
	flags.BoolVar(&o.upload, "upload", false, "Upload the finished file to the configured S3 bucket")
}

// mergeConfig fills flags the user did not set from the configuration file.
func (o *captureOptions) mergeConfig(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	defaults := []struct {
		flag  string
		value *string
		from  string
	}{
		{"type", &o.resultType, cfg.Defaults.Type},
		{"acceleration", &o.acceleration, cfg.Defaults.Acceleration},
		{"audio-backend", &o.audioBackend, cfg.Defaults.AudioBackend},
		{"audio-device", &o.audioDevice, cfg.Defaults.AudioDevice},
		{"audio-channels", &o.audioChannels, cfg.Defaults.AudioChannels},
		{"ffmpeg", &o.ffmpegPath, cfg.FFmpeg.Path},
	}
	for _, d := range defaults {
		if !flags.Changed(d.flag) && d.from != "" {
			*d.value = d.from
		}
	}
	if flags.Changed("audio-backend") {
		o.audio = true
	}
	o.audioDeviceSet = flags.Changed("audio-device")
}

// buildConfig parses the raw options into a capture configuration.
// Unknown tokens fail here, before the capture builder sees them.
func (o *captureOptions) buildConfig(output string, cfg *config.Config) (capture.Config, error) {
	out, err := capture.ParseOutput(output)
	if err != nil {
		return capture.Config{}, err
	}
	resultType, err := capture.ParseResultType(o.resultType)
	if err != nil {
		return capture.Config{}, err
	}
	pos, err := capture.ParsePosition(o.position)
	if err != nil {
		return capture.Config{}, err
	}
	accel, err := capture.ParseHardwareAccel(o.acceleration)
	if err != nil {
		return capture.Config{}, err
	}

	captureCfg := capture.NewConfig(out).
		SetResultType(resultType).
		SetPosition(pos.X, pos.Y).
		SetHardwareAcceleration(accel).
		SetRecordAudio(o.audio).
		SetDisplay(cfg.FFmpeg.Display).
		SetVAAPIDevice(cfg.FFmpeg.VAAPIDevice)

	// Without a size the builder reports the configuration as incomplete.
	if o.size != "" {
		size, err := capture.ParseSize(o.size)
		if err != nil {
			return capture.Config{}, err
		}
		captureCfg = captureCfg.SetSize(size.Width, size.Height)
	}

	if !o.audio && o.audioDeviceSet {
		slog.Warn("audio device has no effect without --audio or --audio-backend", "audio_device", o.audioDevice)
	}

	if o.audio && o.audioDevice != "" {
		backend, err := capture.ParseAudioBackend(o.audioBackend)
		if err != nil {
			return capture.Config{}, err
		}
		channels, err := capture.ParseChannels(o.audioChannels)
		if err != nil {
			return capture.Config{}, err
		}
		captureCfg = captureCfg.SetAudioDevice(capture.AudioDevice{
			Backend:    backend,
			Identifier: o.audioDevice,
			Channels:   channels,
		})
	}

	return captureCfg, nil
}

// runCapture compiles the capture command and runs FFmpeg, relaying its exit status.
func runCapture(cmd *cobra.Command, a *app, opts *captureOptions, output string) error {
	cfg, err := a.ensureConfig()
	if err != nil {
		return err
	}
	opts.mergeConfig(cmd, cfg)

	captureCfg, err := opts.buildConfig(output, cfg)
	if err != nil {
		return err
	}
	command, err := captureCfg.Build()
	if err != nil {
		return err
	}

	ffmpegPath, err := util.ResolveFFmpegPath(opts.ffmpegPath)
	if opts.dryRun {
		if err != nil {
			ffmpegPath = "ffmpeg"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ffmpegPath, command)
		return nil
	}
	if err != nil {
		return err
	}

	out := captureCfg.Output()
	if out.IsStream() && a.isTerminal(a.stdout) {
		return fmt.Errorf("%w: refusing to stream %s data to a terminal; redirect stdout or give an output path", errUsage, captureCfg.ResultType())
	}
	if opts.upload {
		if out.IsStream() {
			return fmt.Errorf("%w: --upload needs a file output", errUsage)
		}
		if !cfg.Upload.IsConfigured() {
			return upload.ErrNotConfigured
		}
	}

	s := newCaptureSession(a, cfg, captureCfg, command)
	defer s.close()
	return s.run(cmd.Context(), ffmpegPath, opts.upload)
}

// captureSession tracks one FFmpeg run and its follow-up work.
type captureSession struct {
	app     *app
	cfg     *config.Config
	capture capture.Config
	command capture.Command
	id      string
	logger  *slog.Logger
	events  *eventlog.Logger
}

func newCaptureSession(a *app, cfg *config.Config, captureCfg capture.Config, command capture.Command) *captureSession {
	id := uuid.NewString()
	s := &captureSession{
		app:     a,
		cfg:     cfg,
		capture: captureCfg,
		command: command,
		id:      id,
		logger:  slog.With("capture_id", id),
	}

	if cfg.EventLog.Path != "" {
		events, err := eventlog.NewLogger(cfg.EventLog.Path)
		if err != nil {
			s.logger.Warn("event log unavailable", "path", cfg.EventLog.Path, "error", err)
		} else {
			s.events = events
		}
	}
	return s
}

func (s *captureSession) close() {
	if err := s.events.Close(); err != nil {
		s.logger.Warn("failed to close event log", "error", err)
	}
}

func (s *captureSession) logEvent(eventType eventlog.EventType, msg string, details *eventlog.Details) {
	err := s.events.Log(&eventlog.Event{
		Timestamp: s.app.now(),
		Type:      eventType,
		CaptureID: s.id,
		Message:   msg,
		Details:   details,
	})
	if err != nil {
		s.logger.Warn("failed to write event", "type", eventType, "error", err)
	}
}

// startDetails describes the capture region and encoder settings.
// Acceleration and audio are only recorded for video, where they take effect.
func (s *captureSession) startDetails() *eventlog.Details {
	d := &eventlog.Details{
		ResultType:  s.capture.ResultType().String(),
		Destination: s.capture.Output().Destination(),
		Args:        s.command.Args,
	}
	if size, ok := s.capture.Size(); ok {
		d.Size = size.String()
	}
	if pos, ok := s.capture.Position(); ok {
		d.Position = pos.String()
	}
	if s.capture.ResultType() == capture.ResultVideo {
		d.Acceleration = s.capture.HardwareAcceleration().String()
		if dev, ok := s.capture.AudioDevice(); ok && s.capture.RecordAudio() {
			d.Audio = fmt.Sprintf("%s:%s (%s)", dev.Backend, dev.Identifier, dev.Channels)
		}
	}
	return d
}

func (s *captureSession) run(ctx context.Context, ffmpegPath string, uploadAfter bool) error {
	out := s.capture.Output()

	if !out.IsStream() {
		unlock, err := lockOutput(out.Path)
		if err != nil {
			return err
		}
		defer unlock()
	}

	s.logger.Info("starting capture",
		"type", s.capture.ResultType(),
		"destination", out.Destination(),
		"ffmpeg", ffmpegPath)
	s.logger.Debug("ffmpeg arguments", "args", s.command.Args)
	s.logEvent(eventlog.CaptureStarted, "capture started", s.startDetails())

	started := s.app.now()
	streams := ffmpeg.Streams{Stdin: s.app.stdin, Stdout: s.app.stdout, Stderr: s.app.stderr}
	code, proc, err := ffmpeg.Run(ctx, ffmpegPath, s.command, streams)
	duration := s.app.now().Sub(started)
	if err != nil {
		s.logEvent(eventlog.CaptureFailed, "ffmpeg did not run", &eventlog.Details{Error: err.Error(), DurationMs: duration.Milliseconds()})
		return err
	}

	if code != 0 {
		lastErr := proc.LastError()
		s.logger.Error("ffmpeg failed", "exit_code", code, "error", lastErr)
		s.logEvent(eventlog.CaptureFailed, "ffmpeg failed", &eventlog.Details{ExitCode: &code, Error: lastErr, DurationMs: duration.Milliseconds()})
		return &exitCodeError{code: code}
	}

	s.logger.Info("capture finished", "duration", duration.Round(time.Millisecond))
	s.logEvent(eventlog.CaptureFinished, "capture finished", &eventlog.Details{ExitCode: &code, DurationMs: duration.Milliseconds()})

	if uploadAfter {
		return s.upload(ctx, out.Path)
	}
	return nil
}

func (s *captureSession) upload(ctx context.Context, path string) error {
	client := s.app.newUploader(&s.cfg.Upload)
	res, err := upload.File(ctx, client, &s.cfg.Upload, path, s.app.now())
	if err != nil {
		s.logger.Error("upload failed", "path", path, "error", err)
		s.logEvent(eventlog.UploadFailed, "upload failed", &eventlog.Details{Destination: path, Error: err.Error()})
		return err
	}
	s.logger.Info("upload completed", "bucket", res.Bucket, "key", res.Key, "bytes", res.Size)
	s.logEvent(eventlog.UploadCompleted, "upload completed", &eventlog.Details{Destination: path, S3Key: res.Key, SizeBytes: res.Size})
	return nil
}

// lockOutput takes an exclusive lock next to path so two captures never write the same file.
func lockOutput(path string) (func(), error) {
	lockPath := path + ".lock"
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, util.WrapError("lock output", err)
	}
	if !locked {
		return nil, fmt.Errorf("output %s is being written by another capture", path)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("failed to release output lock", "path", lockPath, "error", err)
		}
		if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove output lock", "path", lockPath, "error", err)
		}
	}, nil
}
