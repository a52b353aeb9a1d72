package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vfrchap/internal/chapters"
	"vfrchap/internal/qpfile"
	"vfrchap/internal/timecode"
)

// chapFramesRate bounds the frame rate assumed when sizing v1 timecodes to
// cover the last chapter. v2 tables are read as stored.
const chapFramesRate = 120

func newChapFramesCommand(ctx *commandContext) *cobra.Command {
	var fps string
	var idr bool

	cmd := &cobra.Command{
		Use:   "chapframes <chapters.txt> <out.qpfile>",
		Short: "Turn OGM chapter times into qpfile keyframes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open chapters: %w", err)
			}
			defer file.Close()
			chaps, err := chapters.ReadOGM(file)
			if err != nil {
				return err
			}
			if len(chaps) == 0 {
				return chapters.ErrNoChapters
			}

			if fps == "" {
				fps = cfg.Timecodes.DefaultFPS
			}
			last := chaps[len(chaps)-1].Start
			needed := int(last/1_000_000_000+1)*chapFramesRate + 2
			src, err := timecode.Parse(fps, needed, timecode.ParseOptions{Lazy: true, Logger: logger})
			if err != nil {
				return err
			}
			frames, err := chapters.FramesFor(src, chaps)
			if err != nil {
				return err
			}
			if err := qpfile.WriteFile(args[1], frames, qpfile.Options{IDR: idr || cfg.Keyframes.IDR}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d keyframes to %s\n", len(frames), args[1])
			return nil
		},
	}

	cmd.Flags().StringVarP(&fps, "fps", "f", "", "Frame rate or v1/v2 timecodes file (default from config)")
	cmd.Flags().BoolVar(&idr, "idr", false, "Mark frames as I instead of K")
	return cmd
}
