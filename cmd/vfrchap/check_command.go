package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vfrchap/internal/audiocut"
	"vfrchap/internal/deps"
	"vfrchap/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var audio bool

	cmd := &cobra.Command{
		Use:   "check [output paths...]",
		Short: "Report configuration, external tools and output locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			failed := false

			fmt.Fprintln(out, renderSectionHeader("Configuration", colorize))
			if ctx.configExists {
				fmt.Fprintln(out, renderStatusLine("Config file", statusOK, ctx.configPath, colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Config file", statusInfo, "not found; using defaults ("+ctx.configPath+")", colorize))
			}
			fmt.Fprintln(out, renderStatusLine("Default fps", statusInfo, cfg.Timecodes.DefaultFPS, colorize))
			fmt.Fprintln(out, renderStatusLine("Chapter language", statusInfo, cfg.Chapters.Language, colorize))

			fmt.Fprintln(out, renderSectionHeader("Dependencies", colorize))
			statuses := preflight.CheckSystemDeps(cfg, audio)
			failed = len(deps.Missing(statuses)) > 0
			for _, status := range statuses {
				switch {
				case status.Available:
					message := status.Path
					splitter := audiocut.NewSplitter(audiocut.WithBinary(status.Path), audiocut.WithLogger(logger))
					if version, err := splitter.Version(cmd.Context()); err == nil {
						message = fmt.Sprintf("%s (v%s, parts split: %s)", status.Path, version, yesNo(!version.Less(audiocut.PartsSplitVersion)))
					}
					fmt.Fprintln(out, renderStatusLine(status.Name, statusOK, message, colorize))
				case status.Optional:
					fmt.Fprintln(out, renderStatusLine(status.Name, statusWarn, status.Detail+"; "+status.Description, colorize))
				default:
					fmt.Fprintln(out, renderStatusLine(status.Name, statusError, status.Detail, colorize))
				}
			}

			if len(args) > 0 {
				fmt.Fprintln(out, renderSectionHeader("Outputs", colorize))
				for _, path := range args {
					result := preflight.CheckOutputFile(path, path)
					kind := statusOK
					if !result.Passed {
						kind = statusError
						failed = true
					}
					fmt.Fprintln(out, renderStatusLine("Output", kind, result.Detail, colorize))
				}
			}

			if failed {
				return errors.New("check failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&audio, "audio", false, "Require mkvmerge for audio cutting")
	return cmd
}
