package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/oszuidwest/zwfm-screengrab/internal/config"
	"github.com/oszuidwest/zwfm-screengrab/internal/ffmpeg"
	"github.com/oszuidwest/zwfm-screengrab/internal/logging"
	"github.com/oszuidwest/zwfm-screengrab/internal/upload"
)

// errUsage marks command-line mistakes detected outside the capture package.
var errUsage = errors.New("usage")

// app holds the process-level collaborators shared by all commands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// isTerminal reports whether w is an interactive terminal.
	isTerminal func(w io.Writer) bool
	// runCommand executes helper tools (ffmpeg probes, device listings).
	runCommand func(ctx context.Context, name string, args ...string) ([]byte, error)
	// newUploader returns the S3 client used for --upload.
	newUploader func(cfg *upload.Config) upload.Uploader
	now         func() time.Time

	configFlag   string
	logLevelFlag string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newApp() *app {
	return &app{
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		isTerminal: isTerminal,
		runCommand: ffmpeg.ExecRunner,
		newUploader: func(cfg *upload.Config) upload.Uploader {
			return upload.NewClient(cfg)
		},
		now: time.Now,
	}
}

// ensureConfig loads the configuration once and installs the default logger.
func (a *app) ensureConfig() (*config.Config, error) {
	a.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(a.configFlag))
		if err != nil {
			a.configErr = err
			return
		}

		level := cfg.Logging.Level
		if a.logLevelFlag != "" {
			level = a.logLevelFlag
		}
		logger, err := logging.New(logging.Options{
			Level:  level,
			Format: cfg.Logging.Format,
			Output: a.stderr,
		})
		if err != nil {
			a.configErr = err
			return
		}
		slog.SetDefault(logger)
		slog.Debug("configuration loaded", "path", path, "exists", exists)

		a.config = cfg
	})
	return a.config, a.configErr
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
