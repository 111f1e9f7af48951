// Package ffmpeg runs compiled capture commands and probes the FFmpeg binary.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/oszuidwest/zwfm-screengrab/internal/capture"
	"github.com/oszuidwest/zwfm-screengrab/internal/util"
)

// StopGracePeriod is how long FFmpeg may take to finalise its output after an interrupt.
const StopGracePeriod = 10 * time.Second

// Streams holds the standard streams wired to the FFmpeg process.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Process represents a running FFmpeg subprocess.
type Process struct {
	Cmd    *exec.Cmd
	Stderr *bytes.Buffer
}

// StartProcess launches ffmpegPath with the compiled arguments, unmodified and in order.
// Standard output is only connected when the command streams to it. Cancelling ctx
// interrupts FFmpeg so it can close the container, and kills it after StopGracePeriod.
func StartProcess(ctx context.Context, ffmpegPath string, command capture.Command, streams Streams) (*Process, error) {
	cmd := exec.CommandContext(ctx, ffmpegPath, command.Args...)
	cmd.Cancel = func() error {
		return util.GracefulSignal(cmd.Process)
	}
	cmd.WaitDelay = StopGracePeriod

	cmd.Stdin = streams.Stdin
	if command.InheritStdout {
		cmd.Stdout = streams.Stdout
	}

	var stderr bytes.Buffer
	if streams.Stderr != nil {
		cmd.Stderr = io.MultiWriter(streams.Stderr, &stderr)
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	return &Process{
		Cmd:    cmd,
		Stderr: &stderr,
	}, nil
}

// Wait blocks until FFmpeg exits and returns its exit code.
// A non-zero exit is not an error; err is only set when the process could not be waited on.
func (p *Process) Wait() (int, error) {
	err := p.Cmd.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// Terminated by a signal; report the conventional shell status.
			code = 128 + signalNumber(exitErr)
		}
		return code, nil
	}
	return -1, fmt.Errorf("wait for ffmpeg: %w", err)
}

// LastError returns the last non-empty line FFmpeg wrote to stderr.
func (p *Process) LastError() string {
	return util.ExtractLastError(p.Stderr.String())
}

// Run starts the command and waits for it, returning FFmpeg's exit code.
func Run(ctx context.Context, ffmpegPath string, command capture.Command, streams Streams) (int, *Process, error) {
	proc, err := StartProcess(ctx, ffmpegPath, command, streams)
	if err != nil {
		return -1, nil, err
	}
	code, err := proc.Wait()
	return code, proc, err
}
