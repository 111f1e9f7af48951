// Package main provides screengrab, a command-line tool that captures a screen
// region with FFmpeg's x11grab input as an MP4 video or a single JPEG/PNG frame.
//
// Usage:
//
//	screengrab -s 1920,1080 [-p 0,0] [-t mp4|jpg|png] [-a vaapi|nvenc] [--audio-backend pulse --audio-device NAME] <output|->
//
// The FFmpeg exit status is relayed as screengrab's own exit status.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/oszuidwest/zwfm-screengrab/internal/capture"
	"github.com/oszuidwest/zwfm-screengrab/internal/types"
	"github.com/oszuidwest/zwfm-screengrab/internal/util"
)

// Exit statuses used when FFmpeg did not run.
const (
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), util.ShutdownSignals()...)
	code := run(ctx, newApp(), os.Args[1:])
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit status.
func run(ctx context.Context, a *app, args []string) int {
	cmd := newRootCommand(a)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exitErr *exitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}

	reportError(a.stderr, err)
	if isUsageError(err) {
		return exitUsage
	}
	return exitFailure
}

// exitCodeError carries FFmpeg's exit status through cobra.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("ffmpeg exited with status %d", e.code)
}

// isUsageError reports whether err stems from invalid input rather than a runtime failure.
func isUsageError(err error) bool {
	var verr *types.ValidationError
	return errors.Is(err, capture.ErrUnrecognizedValue) ||
		errors.Is(err, capture.ErrIncompleteConfiguration) ||
		errors.Is(err, capture.ErrMissingAudioDevice) ||
		errors.As(err, &verr) ||
		errors.Is(err, errUsage)
}

func reportError(w io.Writer, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	fmt.Fprintf(w, "screengrab: %v\n", err)
}
