package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oszuidwest/zwfm-screengrab/internal/audio"
	"github.com/oszuidwest/zwfm-screengrab/internal/capture"
)

func newDevicesCommand(a *app) *cobra.Command {
	var backend string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List audio capture devices usable with --audio-device",
		Long: `List audio capture sources per backend.

PulseAudio and ALSA identifiers can be passed to --audio-device as is.
For JACK, --audio-device is the name of the client FFmpeg registers, which
starts unconnected; connect the listed client's ports to it with jack_connect.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var devices []audio.Device
			if backend == "" {
				devices = audio.AllDevices(ctx, a.runCommand)
			} else {
				b, err := capture.ParseAudioBackend(backend)
				if err != nil {
					return err
				}
				devices, err = audio.Devices(ctx, b, a.runCommand)
				if err != nil {
					return err
				}
			}

			if jsonOutput {
				if devices == nil {
					devices = []audio.Device{}
				}
				return writeJSON(cmd, devices)
			}

			out := cmd.OutOrStdout()
			if len(devices) == 0 {
				fmt.Fprintln(out, "No audio devices found")
				return nil
			}
			rows := make([][]string, 0, len(devices))
			for _, d := range devices {
				rows = append(rows, []string{d.Backend.String(), d.ID, d.Name})
			}
			fmt.Fprintln(out, renderTable([]string{"Backend", "ID", "Name"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "Only list devices for this backend (pulse, alsa, jack)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
