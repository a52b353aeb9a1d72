package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var logFormatFlag string

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag)
	var runFlags runOptions

	rootCmd := &cobra.Command{
		Use:   "vfrchap [flags] script.avs",
		Short: "Resolve script trims into timecodes, chapters, qpfiles and cut audio",
		Long: `vfrchap reads the Trim() calls of an AviSynth-style script and renumbers
them into a gapless output timeline. It writes v2 timecodes, OGM, x264 or
Matroska chapters, an x264 qpfile, and cuts the matching audio with mkvmerge.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureLogger()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runJob(cmd, ctx, args[0], runFlags)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "C", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format override (console, json)")
	runFlags.register(rootCmd)

	rootCmd.AddCommand(newTCConvCommand(ctx))
	rootCmd.AddCommand(newChapFramesCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
