package capture_test

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/oszuidwest/zwfm-screengrab/internal/capture"
)

func baseVideo() capture.Config {
	return capture.NewConfig(capture.FileOutput("out.mp4")).
		SetResultType(capture.ResultVideo).
		SetSize(1920, 1080).
		SetPosition(0, 0)
}

func TestCompileVideoScenario(t *testing.T) {
	cmd, err := baseVideo().SetHardwareAcceleration(capture.AccelNone).SetRecordAudio(false).Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	want := []string{
		"-video_size", "1920x1080",
		"-framerate", "60",
		"-loglevel", "error",
		"-f", "x11grab",
		"-i", ":0.0+0,0",
		"-y", "-bf", "0",
		"-f", "mp4",
		"out.mp4",
	}
	if !slices.Equal(cmd.Args, want) {
		t.Fatalf("unexpected args:\n got %q\nwant %q", cmd.Args, want)
	}
	if cmd.InheritStdout {
		t.Fatal("file output must not inherit stdout")
	}
}

func TestCompileStillPNGStream(t *testing.T) {
	cfg := capture.NewConfig(capture.StreamOutput()).
		SetResultType(capture.ResultStillPNG).
		SetSize(800, 600).
		SetPosition(100, 50)

	cmd, err := capture.Compile(cfg)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	want := []string{
		"-video_size", "800x600",
		"-framerate", "1",
		"-loglevel", "error",
		"-f", "x11grab",
		"-i", ":0.0+100,50",
		"-vframes", "1",
		"-y", "-bf", "0",
		"-f", "apng",
		"-",
	}
	if !slices.Equal(cmd.Args, want) {
		t.Fatalf("unexpected args:\n got %q\nwant %q", cmd.Args, want)
	}
	if !cmd.InheritStdout {
		t.Fatal("stream output must inherit stdout")
	}
}

func TestFileOutputStreamMarkerStreams(t *testing.T) {
	out := capture.FileOutput(capture.StreamMarker)
	if !out.IsStream() {
		t.Fatalf("FileOutput(%q) should be a stream output: %+v", capture.StreamMarker, out)
	}

	cmd, err := capture.NewConfig(out).
		SetResultType(capture.ResultStillPNG).
		SetSize(800, 600).
		SetPosition(100, 50).
		Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if last := cmd.Args[len(cmd.Args)-1]; last != "-" {
		t.Fatalf("destination = %q, want -", last)
	}
	if !cmd.InheritStdout {
		t.Fatal("writing to the stream marker must inherit stdout")
	}

	// A hand-built file output naming the marker is still treated as a stream.
	literal := capture.Output{Kind: capture.OutputFile, Path: capture.StreamMarker}
	if !literal.IsStream() {
		t.Fatal("an output whose path is the stream marker must report IsStream")
	}
}

func TestCompileStillJPEGUsesMJPEG(t *testing.T) {
	cmd, err := capture.NewConfig(capture.FileOutput("shot.jpg")).
		SetResultType(capture.ResultStillJPEG).
		SetSize(10, 10).
		SetPosition(0, 0).
		Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	tail := cmd.Args[len(cmd.Args)-3:]
	if !slices.Equal(tail, []string{"-f", "mjpeg", "shot.jpg"}) {
		t.Fatalf("unexpected output tail: %q", tail)
	}
}

func TestCompileIncomplete(t *testing.T) {
	out := capture.FileOutput("x.png")
	tests := []struct {
		name  string
		cfg   capture.Config
		field string
	}{
		{"no result type", capture.NewConfig(out).SetSize(1, 1).SetPosition(0, 0), "result type"},
		{"no size", capture.NewConfig(out).SetResultType(capture.ResultStillPNG).SetPosition(0, 0), "size"},
		{"no position", capture.NewConfig(out).SetResultType(capture.ResultStillPNG).SetSize(1, 1), "position"},
		{"empty path", capture.NewConfig(capture.FileOutput("")).SetResultType(capture.ResultStillPNG).SetSize(1, 1).SetPosition(0, 0), "output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := capture.Compile(tt.cfg)
			if !errors.Is(err, capture.ErrIncompleteConfiguration) {
				t.Fatalf("expected ErrIncompleteConfiguration, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Fatalf("error %q does not name field %q", err, tt.field)
			}
			if cmd.Args != nil {
				t.Fatalf("expected no args on error, got %q", cmd.Args)
			}
		})
	}
}

func TestCompileMissingAudioDevice(t *testing.T) {
	for _, rt := range []capture.ResultType{capture.ResultVideo, capture.ResultStillJPEG, capture.ResultStillPNG} {
		cfg := baseVideo().SetResultType(rt).SetRecordAudio(true)
		cmd, err := cfg.Build()
		if !errors.Is(err, capture.ErrMissingAudioDevice) {
			t.Fatalf("%s: expected ErrMissingAudioDevice, got %v", rt, err)
		}
		if cmd.Args != nil {
			t.Fatalf("%s: expected no args on error", rt)
		}
	}
}

func TestCompileVideoAudio(t *testing.T) {
	cfg := baseVideo().
		SetAudioDevice(capture.AudioDevice{Backend: capture.BackendALSA, Identifier: "hw:1,0", Channels: capture.Mono}).
		SetRecordAudio(true)

	cmd, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	block := []string{"-f", "alsa", "-ac", "1", "-i", "hw:1,0"}
	if idx := indexOf(cmd.Args, block); idx != 10 {
		t.Fatalf("audio block at %d, want 10: %q", idx, cmd.Args)
	}
}

func TestCompileAudioDeviceIgnoredWhenNotRecording(t *testing.T) {
	cfg := baseVideo().SetAudioDevice(capture.AudioDevice{Backend: capture.BackendPulse, Identifier: "default"})
	cmd, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if slices.Contains(cmd.Args, "pulse") || slices.Contains(cmd.Args, "-ac") {
		t.Fatalf("audio flags emitted without record_audio: %q", cmd.Args)
	}
}

func TestCompileAccelerators(t *testing.T) {
	vaapi, err := baseVideo().SetHardwareAcceleration(capture.AccelVAAPI).Build()
	if err != nil {
		t.Fatalf("vaapi: %v", err)
	}
	nvenc, err := baseVideo().SetHardwareAcceleration(capture.AccelNVENC).Build()
	if err != nil {
		t.Fatalf("nvenc: %v", err)
	}

	vaapiBlock := []string{
		"-hwaccel", "vaapi",
		"-vaapi_device", "/dev/dri/renderD128",
		"-vf", "format=nv12,hwupload",
		"-bit_rate", "320k",
		"-c:v", "h264_vaapi",
	}
	nvencBlock := []string{"-vcodec", "h264_nvenc"}

	if indexOf(vaapi.Args, vaapiBlock) != 10 || indexOf(vaapi.Args, nvencBlock) >= 0 {
		t.Fatalf("unexpected vaapi args: %q", vaapi.Args)
	}
	if indexOf(nvenc.Args, nvencBlock) != 10 || slices.Contains(nvenc.Args, "-hwaccel") {
		t.Fatalf("unexpected nvenc args: %q", nvenc.Args)
	}

	stripped := slices.Delete(slices.Clone(vaapi.Args), 10, 10+len(vaapiBlock))
	if !slices.Equal(stripped, slices.Delete(slices.Clone(nvenc.Args), 10, 12)) {
		t.Fatalf("accelerator variants differ outside their blocks:\n%q\n%q", vaapi.Args, nvenc.Args)
	}
}

func TestCompileAudioPrecedesAccelerator(t *testing.T) {
	cmd, err := baseVideo().
		SetHardwareAcceleration(capture.AccelNVENC).
		SetRecordAudio(true).
		SetAudioDevice(capture.AudioDevice{Backend: capture.BackendJACK, Identifier: "system", Channels: capture.Stereo}).
		Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	audio := indexOf(cmd.Args, []string{"-f", "jack", "-ac", "2", "-i", "system"})
	accel := indexOf(cmd.Args, []string{"-vcodec", "h264_nvenc"})
	output := indexOf(cmd.Args, []string{"-y", "-bf", "0"})
	if audio < 0 || accel < audio || output < accel {
		t.Fatalf("unexpected block order: audio=%d accel=%d output=%d in %q", audio, accel, output, cmd.Args)
	}
}

func TestCompileStillIgnoresVideoOnlySettings(t *testing.T) {
	for _, rt := range []capture.ResultType{capture.ResultStillJPEG, capture.ResultStillPNG} {
		for _, accel := range []capture.HardwareAccel{capture.AccelVAAPI, capture.AccelNVENC} {
			cmd, err := baseVideo().
				SetResultType(rt).
				SetHardwareAcceleration(accel).
				SetRecordAudio(true).
				SetAudioDevice(capture.AudioDevice{Backend: capture.BackendPulse, Identifier: "mic"}).
				Build()
			if err != nil {
				t.Fatalf("%s/%s: %v", rt, accel, err)
			}
			for _, flag := range []string{"-hwaccel", "-vaapi_device", "-vcodec", "-c:v", "-ac", "pulse", "mic"} {
				if slices.Contains(cmd.Args, flag) {
					t.Fatalf("%s/%s: unexpected %q in %q", rt, accel, flag, cmd.Args)
				}
			}
		}
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	cfg := baseVideo().
		SetHardwareAcceleration(capture.AccelVAAPI).
		SetRecordAudio(true).
		SetAudioDevice(capture.AudioDevice{Backend: capture.BackendPulse, Identifier: "alsa_input.usb", Channels: capture.Stereo})

	first, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	for range 5 {
		again, err := cfg.Build()
		if err != nil {
			t.Fatalf("Build returned error: %v", err)
		}
		if !slices.Equal(first.Args, again.Args) {
			t.Fatalf("non-deterministic output:\n%q\n%q", first.Args, again.Args)
		}
	}
}

func TestSettersAreOrderIndependentAndLastWriteWins(t *testing.T) {
	a := capture.NewConfig(capture.FileOutput("a.mp4")).
		SetPosition(5, 5).
		SetSize(640, 480).
		SetResultType(capture.ResultStillPNG).
		SetResultType(capture.ResultVideo).
		SetPosition(10, 20)
	b := capture.NewConfig(capture.FileOutput("a.mp4")).
		SetResultType(capture.ResultVideo).
		SetPosition(10, 20).
		SetSize(640, 480)

	ca, errA := a.Build()
	cb, errB := b.Build()
	if errA != nil || errB != nil {
		t.Fatalf("Build errors: %v, %v", errA, errB)
	}
	if !slices.Equal(ca.Args, cb.Args) {
		t.Fatalf("setter order changed output:\n%q\n%q", ca.Args, cb.Args)
	}
}

func TestSettersDoNotMutateReceiver(t *testing.T) {
	base := baseVideo()
	_ = base.SetSize(1, 1).SetHardwareAcceleration(capture.AccelNVENC)

	cmd, err := base.Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if cmd.Args[1] != "1920x1080" || slices.Contains(cmd.Args, "-vcodec") {
		t.Fatalf("receiver was mutated: %q", cmd.Args)
	}
}

func TestDisplayAndVAAPIDeviceOverrides(t *testing.T) {
	cmd, err := baseVideo().
		SetDisplay(":1").
		SetVAAPIDevice("/dev/dri/renderD129").
		SetHardwareAcceleration(capture.AccelVAAPI).
		Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if !slices.Contains(cmd.Args, ":1+0,0") {
		t.Fatalf("display override missing: %q", cmd.Args)
	}
	if !slices.Contains(cmd.Args, "/dev/dri/renderD129") {
		t.Fatalf("vaapi device override missing: %q", cmd.Args)
	}

	reset, err := baseVideo().SetDisplay(":1").SetDisplay("").Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if !slices.Contains(reset.Args, ":0.0+0,0") {
		t.Fatalf("empty display should restore default: %q", reset.Args)
	}
}

func TestCommandString(t *testing.T) {
	cmd := capture.Command{Args: []string{"-i", ":0.0+0,0", "my file.mp4", "it's", ""}}
	want := `-i :0.0+0,0 'my file.mp4' 'it'\''s' ''`
	if got := cmd.String(); got != want {
		t.Fatalf("String() = %s, want %s", got, want)
	}
}

// indexOf returns the start index of block within args, or -1.
func indexOf(args, block []string) int {
	for i := 0; i+len(block) <= len(args); i++ {
		if slices.Equal(args[i:i+len(block)], block) {
			return i
		}
	}
	return -1
}
