package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/oszuidwest/zwfm-screengrab/internal/ffmpeg"
	"github.com/oszuidwest/zwfm-screengrab/internal/util"
)

// errCheckFailed is returned when the environment cannot run captures.
var errCheckFailed = errors.New("environment check failed")

func newCheckCommand(a *app) *cobra.Command {
	var ffmpegFlag string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the FFmpeg installation and capture environment",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.ensureConfig()
			if err != nil {
				return err
			}
			custom := cfg.FFmpeg.Path
			if ffmpegFlag != "" {
				custom = ffmpegFlag
			}

			out := cmd.OutOrStdout()
			path, err := util.ResolveFFmpegPath(custom)
			if err != nil {
				fmt.Fprintln(out, renderTable([]string{"Check", "Result"}, [][]string{{"FFmpeg", "not found"}}, nil))
				return err
			}

			probe, err := ffmpeg.Probe(cmd.Context(), path, a.runCommand)
			if err != nil {
				return err
			}

			version := probe.Version
			if version == "" {
				version = probe.Raw
			}
			vaapiDevice := cfg.FFmpeg.VAAPIDevice
			rows := [][]string{
				{"FFmpeg", probe.Path},
				{"Version", version},
				{"Minimum version", ffmpeg.MinimumVersion},
				{"Supported", yesNo(probe.Supported())},
				{"Encoder " + ffmpeg.EncoderVAAPI, yesNo(probe.HasEncoder(ffmpeg.EncoderVAAPI))},
				{"Encoder " + ffmpeg.EncoderNVENC, yesNo(probe.HasEncoder(ffmpeg.EncoderNVENC))},
				{"VA-API device " + vaapiDevice, yesNo(fileExists(vaapiDevice))},
				{"Display", cfg.FFmpeg.Display},
				{"DISPLAY", strconv.Quote(os.Getenv("DISPLAY"))},
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Result"}, rows, nil))

			if !probe.Supported() {
				return fmt.Errorf("%w: ffmpeg %s is older than %s", errCheckFailed, probe.Version, ffmpeg.MinimumVersion)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ffmpegFlag, "ffmpeg", "", "Path to the FFmpeg binary")
	return cmd
}

func yesNo(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
