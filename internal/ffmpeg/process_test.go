package ffmpeg_test

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/oszuidwest/zwfm-screengrab/internal/capture"
	"github.com/oszuidwest/zwfm-screengrab/internal/ffmpeg"
)

// shell returns the path to sh, skipping the test when it is unavailable.
func shell(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return path
}

func TestRunRelaysExitCode(t *testing.T) {
	sh := shell(t)
	var stderr bytes.Buffer
	cmd := capture.Command{Args: []string{"-c", "echo 'no such device' >&2; exit 3"}}

	code, proc, err := ffmpeg.Run(context.Background(), sh, cmd, ffmpeg.Streams{Stderr: &stderr})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if code != 3 {
		t.Fatalf("exit code = %d, want 3", code)
	}
	if proc.LastError() != "no such device" {
		t.Fatalf("LastError() = %q", proc.LastError())
	}
	if !strings.Contains(stderr.String(), "no such device") {
		t.Fatalf("stderr was not forwarded: %q", stderr.String())
	}
}

func TestRunStdoutOnlyWhenStreaming(t *testing.T) {
	sh := shell(t)
	args := []string{"-c", "printf frame"}

	var stdout bytes.Buffer
	code, _, err := ffmpeg.Run(context.Background(), sh, capture.Command{Args: args}, ffmpeg.Streams{Stdout: &stdout})
	if err != nil || code != 0 {
		t.Fatalf("Run = %d, %v", code, err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("file capture wrote to stdout: %q", stdout.String())
	}

	code, _, err = ffmpeg.Run(context.Background(), sh, capture.Command{Args: args, InheritStdout: true}, ffmpeg.Streams{Stdout: &stdout})
	if err != nil || code != 0 {
		t.Fatalf("Run = %d, %v", code, err)
	}
	if stdout.String() != "frame" {
		t.Fatalf("stream capture stdout = %q", stdout.String())
	}
}

func TestRunInterruptsOnCancel(t *testing.T) {
	sh := shell(t)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	cmd := capture.Command{Args: []string{"-c", "trap 'exit 255' INT; while :; do sleep 0.05; done"}}
	code, _, err := ffmpeg.Run(ctx, sh, cmd, ffmpeg.Streams{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if code == 0 {
		t.Fatal("expected non-zero exit after cancellation")
	}
}

func TestStartProcessMissingBinary(t *testing.T) {
	_, err := ffmpeg.StartProcess(context.Background(), "/nonexistent/ffmpeg", capture.Command{}, ffmpeg.Streams{})
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}
