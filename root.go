package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCommand(a *app) *cobra.Command {
	opts := &captureOptions{}

	rootCmd := &cobra.Command{
		Use:   "screengrab [flags] <output>",
		Short: "Capture a screen region to a video, image or stdout with FFmpeg",
		Long: `Capture a region of an X11 display with FFmpeg.

The output is a file path, or "-" to stream to standard output.
FFmpeg's exit status is returned unchanged.`,
		Version:       Version,
		Args:          usageArgs(cobra.ExactArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(cmd, a, opts, args[0])
		},
	}
	rootCmd.SetVersionTemplate("screengrab {{.Version}} (commit " + Commit + ", built " + BuildTime + ")\n")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})
	rootCmd.SetIn(a.stdin)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	rootCmd.PersistentFlags().StringVarP(&a.configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&a.logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")

	opts.bindFlags(rootCmd)

	rootCmd.AddCommand(newDevicesCommand(a))
	rootCmd.AddCommand(newCheckCommand(a))
	rootCmd.AddCommand(newHistoryCommand(a))

	return rootCmd
}

// usageArgs marks positional argument mistakes as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		return nil
	}
}
