package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"

	"github.com/oszuidwest/zwfm-screengrab/internal/capture"
)

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// DeviceListConfig defines how to list audio devices for a backend.
type DeviceListConfig struct {
	// Command and args to list devices.
	Command []string

	// DevicePattern is the regex to extract device info.
	DevicePattern *regexp.Regexp

	// ParseDevice converts regex matches to a Device.
	ParseDevice func(matches []string) *Device

	// FallbackDevices are returned if detection finds nothing.
	FallbackDevices []Device
}

// Devices returns the capture sources available for backend.
func Devices(ctx context.Context, backend capture.AudioBackend, run Runner) ([]Device, error) {
	if run == nil {
		run = ExecRunner
	}
	cfg, ok := listConfigs[backend]
	if !ok {
		return nil, fmt.Errorf("no device listing for backend %s", backend)
	}
	return parseDeviceList(ctx, backend, cfg, run)
}

// AllDevices lists sources for every backend, skipping backends whose tools are missing.
func AllDevices(ctx context.Context, run Runner) []Device {
	var all []Device
	for _, backend := range []capture.AudioBackend{capture.BackendPulse, capture.BackendALSA, capture.BackendJACK} {
		devices, err := Devices(ctx, backend, run)
		if err != nil {
			slog.Debug("audio backend unavailable", "backend", backend, "error", err)
			continue
		}
		all = append(all, devices...)
	}
	return all
}

// parseDeviceList runs the listing command and extracts device information from its output.
//
//nolint:gocritic // hugeParam: config is small and built once per call
func parseDeviceList(ctx context.Context, backend capture.AudioBackend, cfg DeviceListConfig, run Runner) ([]Device, error) {
	output, err := run(ctx, cfg.Command[0], cfg.Command[1:]...)
	if err != nil && len(output) == 0 {
		return nil, fmt.Errorf("list %s devices: %w", backend, err)
	}

	var devices []Device
	seen := make(map[string]bool)
	for line := range strings.SplitSeq(string(output), "\n") {
		matches := cfg.DevicePattern.FindStringSubmatch(line)
		if len(matches) == 0 {
			continue
		}
		if dev := cfg.ParseDevice(matches); dev != nil && !seen[dev.ID] {
			seen[dev.ID] = true
			dev.Backend = backend
			devices = append(devices, *dev)
		}
	}

	if len(devices) == 0 {
		devices = make([]Device, 0, len(cfg.FallbackDevices))
		for _, dev := range cfg.FallbackDevices {
			dev.Backend = backend
			devices = append(devices, dev)
		}
	}

	return devices, nil
}
