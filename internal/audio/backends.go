package audio

import (
	"regexp"
	"strings"

	"github.com/oszuidwest/zwfm-screengrab/internal/capture"
)

// listConfigs describes how each backend enumerates its capture sources.
var listConfigs = map[capture.AudioBackend]DeviceListConfig{
	capture.BackendPulse: {
		// "1	alsa_input.usb-Blue_Yeti-00.analog-stereo	module-alsa-card.c	s16le 2ch 48000Hz	SUSPENDED"
		Command:       []string{"pactl", "list", "short", "sources"},
		DevicePattern: regexp.MustCompile(`^\d+\s+(\S+)\s+\S+\s+(.*?)\s+(\S+)\s*$`),
		ParseDevice: func(matches []string) *Device {
			if len(matches) < 4 {
				return nil
			}
			name := matches[1] + " [" + matches[2] + "]"
			if strings.HasSuffix(matches[1], ".monitor") {
				name += " (monitor)"
			}
			return &Device{ID: matches[1], Name: name}
		},
		FallbackDevices: []Device{
			{ID: "default", Name: "Default source"},
		},
	},
	capture.BackendALSA: {
		// "card 1: Microphone [Yeti Stereo Microphone], device 0: USB Audio [USB Audio]"
		Command:       []string{"arecord", "-l"},
		DevicePattern: regexp.MustCompile(`card\s+(\d+):\s+\w+\s+\[([^\]]+)\],\s+device\s+(\d+):\s+[^\[]*\[([^\]]+)\]`),
		ParseDevice: func(matches []string) *Device {
			if len(matches) < 5 {
				return nil
			}
			return &Device{
				ID:   "hw:" + matches[1] + "," + matches[3],
				Name: matches[2] + " - " + matches[4],
			}
		},
		FallbackDevices: []Device{
			{ID: "default", Name: "Default PCM"},
		},
	},
	capture.BackendJACK: {
		// FFmpeg's jack input registers a new client named by --audio-device and does
		// not connect it. The listed clients are sources to jack_connect to it.
		Command:       []string{"jack_lsp"},
		DevicePattern: regexp.MustCompile(`^([^:\s]+):(\S+)`),
		ParseDevice: func(matches []string) *Device {
			if len(matches) < 3 {
				return nil
			}
			return &Device{ID: matches[1], Name: "JACK client " + matches[1] + " (connect with jack_connect)"}
		},
	},
}
