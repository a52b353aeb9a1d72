package main

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"vfrchap/internal/timecode"
)

func newTCConvCommand(ctx *commandContext) *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:   "tcconv <fps|timecodes> <out.v2.txt> <frames> [first]",
		Short: "Write v2 timecodes for a frame rate or a v1/v2 timecodes file",
		Long: `tcconv writes <frames> v2 timestamps for a constant rate or a timecodes
file. With [first] the header and the first frames are skipped and the
rest is appended, so long outputs can be produced in pieces.`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			frames, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("frames %q: %w", args[2], err)
			}
			first := 0
			if len(args) == 4 {
				if first, err = strconv.Atoi(args[3]); err != nil {
					return fmt.Errorf("first %q: %w", args[3], err)
				}
			}

			stderr := cmd.ErrOrStderr()
			bar := progressbar.NewOptions(frames-first,
				progressbar.OptionSetWriter(stderr),
				progressbar.OptionSetVisibility(shouldColorize(stderr)),
				progressbar.OptionSetDescription("timecodes"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			err = timecode.Convert(cmd.Context(), args[0], frames, timecode.ConvertOptions{
				OutputPath: args[1],
				First:      first,
				Jobs:       jobs,
				Progress:   func(n int) { _ = bar.Add(n) },
				Logger:     logger,
			})
			_ = bar.Finish()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s frames to %s\n", humanize.Comma(int64(frames-first)), args[1])
			return nil
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "Workers computing constant-rate timestamps")
	return cmd
}
