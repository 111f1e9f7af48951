package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/oszuidwest/zwfm-screengrab/internal/eventlog"
)

func newHistoryCommand(a *app) *cobra.Command {
	var limit int
	var kind string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent capture and upload events",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.EventLog.Path == "" {
				return errors.New("event log is not configured; set [event_log] path")
			}
			if limit <= 0 {
				return fmt.Errorf("%w: --limit must be positive", errUsage)
			}
			keep, err := eventFilter(kind)
			if err != nil {
				return err
			}

			// Filtering happens after the read, so ask for the most the log allows.
			readLimit := limit
			if kind != "" {
				readLimit = eventlog.MaxReadLimit
			}
			all, err := eventlog.ReadLast(cfg.EventLog.Path, readLimit)
			if err != nil {
				return err
			}
			events := make([]eventlog.Event, 0, len(all))
			for _, e := range all {
				if keep(e.Type) && len(events) < limit {
					events = append(events, e)
				}
			}

			if jsonOutput {
				return writeJSON(cmd, events)
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No events recorded")
				return nil
			}
			rows := make([][]string, 0, len(events))
			for _, e := range events {
				rows = append(rows, historyRow(e))
			}
			headers := []string{"Time", "Event", "Capture", "Region", "Settings", "Exit", "Detail"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of events to show")
	cmd.Flags().StringVar(&kind, "type", "", "Only show capture or upload events")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// eventFilter returns the predicate selecting events for a --type value.
func eventFilter(kind string) (func(eventlog.EventType) bool, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "":
		return func(eventlog.EventType) bool { return true }, nil
	case "capture":
		return eventlog.IsCaptureEvent, nil
	case "upload":
		return eventlog.IsUploadEvent, nil
	default:
		return nil, fmt.Errorf("%w: --type must be capture or upload, got %q", errUsage, kind)
	}
}

func historyRow(e eventlog.Event) []string {
	id := e.CaptureID
	if len(id) > 8 {
		id = id[:8]
	}
	row := []string{e.Timestamp.Local().Format(time.DateTime), string(e.Type), id, "", "", "", e.Message}
	d := e.Details
	if d == nil {
		return row
	}

	if d.Size != "" {
		row[3] = d.Size
		if d.Position != "" {
			row[3] += "+" + d.Position
		}
	}
	var settings []string
	for _, v := range []string{d.ResultType, d.Acceleration, d.Audio} {
		if v != "" {
			settings = append(settings, v)
		}
	}
	row[4] = strings.Join(settings, " ")

	if d.ExitCode != nil {
		row[5] = strconv.Itoa(*d.ExitCode)
	}
	switch {
	case d.Error != "":
		row[6] = d.Error
	case d.S3Key != "":
		row[6] = d.S3Key
	case d.Destination != "":
		row[6] = d.Destination
	case d.DurationMs > 0:
		row[6] = (time.Duration(d.DurationMs) * time.Millisecond).String()
	}
	return row
}
