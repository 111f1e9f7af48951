// Package config loads screengrab's optional TOML configuration file.
//
// The file only supplies defaults for command-line flags and settings for the
// optional event log and upload target. It is never written by screengrab.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/oszuidwest/zwfm-screengrab/internal/capture"
	"github.com/oszuidwest/zwfm-screengrab/internal/upload"
	"github.com/oszuidwest/zwfm-screengrab/internal/util"
)

// Configuration defaults are used when values are not specified.
const (
	DefaultResultType    = "png"
	DefaultAcceleration  = "none"
	DefaultAudioBackend  = "pulse"
	DefaultAudioChannels = "stereo"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// FFmpegConfig holds settings for the FFmpeg binary and capture source.
type FFmpegConfig struct {
	Path        string `toml:"path"`                                           // Path to FFmpeg binary (empty = use PATH)
	Display     string `toml:"display" validate:"omitempty,contains=:"`        // X11 display, e.g. ":0.0"
	VAAPIDevice string `toml:"vaapi_device" validate:"omitempty,startswith=/"` // VA-API render node
}

// DefaultsConfig holds values used when the matching flag is not given.
type DefaultsConfig struct {
	Type          string `toml:"type" validate:"omitempty,resulttype"`
	Acceleration  string `toml:"acceleration" validate:"omitempty,accel"`
	AudioBackend  string `toml:"audio_backend" validate:"omitempty,audiobackend"`
	AudioDevice   string `toml:"audio_device"`
	AudioChannels string `toml:"audio_channels" validate:"omitempty,channels"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `toml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `toml:"format" validate:"omitempty,oneof=text json"`
}

// EventLogConfig holds the JSON lines event log settings.
type EventLogConfig struct {
	Path string `toml:"path"` // Empty disables the event log
}

// Config holds all application configuration.
type Config struct {
	FFmpeg   FFmpegConfig   `toml:"ffmpeg"`
	Defaults DefaultsConfig `toml:"defaults"`
	Logging  LoggingConfig  `toml:"logging"`
	EventLog EventLogConfig `toml:"event_log"`
	Upload   upload.Config  `toml:"upload"`
}

// Default returns a configuration populated with default values.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// DefaultPath returns the default configuration file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", util.WrapError("locate config directory", err)
	}
	return filepath.Join(dir, "zwfm-screengrab", "config.toml"), nil
}

// Load reads the configuration at path, or at DefaultPath when path is empty.
// A missing file yields the defaults. It returns the resolved path and whether the file exists.
func Load(path string) (*Config, string, bool, error) {
	resolved := path
	if resolved == "" {
		var err error
		if resolved, err = DefaultPath(); err != nil {
			return nil, "", false, err
		}
	}
	resolved = expandHome(resolved)

	cfg := Default()
	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if path != "" {
			return nil, resolved, false, fmt.Errorf("config file %s does not exist", resolved)
		}
		return &cfg, resolved, false, nil
	case err != nil:
		return nil, resolved, false, util.WrapError("read config", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, resolved, true, util.WrapError("parse config", err)
	}

	cfg.applyDefaults()
	cfg.EventLog.Path = expandHome(cfg.EventLog.Path)

	if err := cfg.Validate(); err != nil {
		return nil, resolved, true, err
	}

	return &cfg, resolved, true, nil
}

// applyDefaults sets default values for zero-value fields.
func (c *Config) applyDefaults() {
	if c.FFmpeg.Display == "" {
		c.FFmpeg.Display = capture.DefaultDisplay
	}
	if c.FFmpeg.VAAPIDevice == "" {
		c.FFmpeg.VAAPIDevice = capture.DefaultVAAPIDevice
	}
	if c.Defaults.Type == "" {
		c.Defaults.Type = DefaultResultType
	}
	if c.Defaults.Acceleration == "" {
		c.Defaults.Acceleration = DefaultAcceleration
	}
	if c.Defaults.AudioBackend == "" {
		c.Defaults.AudioBackend = DefaultAudioBackend
	}
	if c.Defaults.AudioChannels == "" {
		c.Defaults.AudioChannels = DefaultAudioChannels
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
