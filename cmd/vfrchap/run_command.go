package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vfrchap/internal/pipeline"
	"vfrchap/internal/timecode"
	"vfrchap/internal/trims"
)

type runOptions struct {
	label     string
	line      int
	reverse   bool
	clip      string
	fps       string
	ofps      string
	timecodes string
	chapters  string
	chnames   string
	template  string
	uid       uint64
	qpfile    string
	idr       bool
	input     string
	output    string
	delay     int
	sbr       bool
	merge     bool
	remove    bool
	verbose   bool
	test      bool
}

func (o *runOptions) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&o.label, "label", "l", "", "Use the trims of the line commented with this label, or of the Trim spelled this way")
	flags.IntVarP(&o.line, "line", "g", 0, "Use the trims of this 1-based script line")
	flags.BoolVarP(&o.reverse, "reverse", "b", false, "Search the script from the bottom")
	flags.StringVar(&o.clip, "clip", "", "Only accept trims applied to this clip")
	flags.StringVarP(&o.fps, "fps", "f", "", "Frame rate or v1/v2 timecodes file (default from config)")
	flags.StringVar(&o.ofps, "ofps", "", "Output frame rate to renumber trims to")
	flags.StringVar(&o.timecodes, "timecodes", "", "Write v2 timecodes of the source to this file")
	flags.StringVarP(&o.chapters, "chapters", "c", "", "Write chapters; .xml selects Matroska, .x264.txt x264, anything else OGM")
	flags.StringVarP(&o.chnames, "chnames", "n", "", "UTF-8 file with one chapter name per line")
	flags.StringVarP(&o.template, "template", "t", "", "TOML chapter template (Matroska chapters only)")
	flags.Uint64Var(&o.uid, "uid", 0, "Base for Matroska chapter UIDs (default random)")
	flags.StringVarP(&o.qpfile, "qpfile", "q", "", "Write an x264 qpfile with a keyframe at every trim start")
	flags.BoolVar(&o.idr, "idr", false, "Mark qpfile frames as I instead of K")
	flags.StringVarP(&o.input, "input", "i", "", "Audio file to cut")
	flags.StringVarP(&o.output, "output", "o", "", "Cut audio output (default <input>.cut.mka)")
	flags.IntVarP(&o.delay, "delay", "d", 0, "Audio delay in ms (default from a DELAY tag in the input name)")
	flags.BoolVar(&o.sbr, "sbr", false, "Treat AAC input as HE-AAC (SBR)")
	flags.BoolVarP(&o.merge, "merge", "m", false, "Merge kept parts when mkvmerge splits by timecodes")
	flags.BoolVarP(&o.remove, "remove", "r", false, "Delete split parts after merging")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Print resolved trims and mkvmerge commands")
	flags.BoolVar(&o.test, "test", false, "Resolve and print everything without writing files")
}

func (o runOptions) request(cmd *cobra.Command, script string) pipeline.Request {
	req := pipeline.Request{
		Script: script,
		Select: trims.ScriptOptions{
			Label:   o.label,
			Reverse: o.reverse,
			Line:    o.line,
			Clip:    o.clip,
		},
		FPS:          o.fps,
		OFPS:         o.ofps,
		Timecodes:    o.timecodes,
		Chapters:     o.chapters,
		ChapterNames: o.chnames,
		Template:     o.template,
		UID:          o.uid,
		QPFile:       o.qpfile,
		IDR:          o.idr,
		Input:        o.input,
		Output:       o.output,
		SBR:          o.sbr,
		Merge:        o.merge,
		Remove:       o.remove,
		Verbose:      o.verbose,
		DryRun:       o.test,
	}
	if cmd.Flags().Changed("delay") {
		delay := o.delay
		req.Delay = &delay
	}
	return req
}

func runJob(cmd *cobra.Command, ctx *commandContext, script string, opts runOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(cfg, logger)
	report, err := runner.Run(cmd.Context(), opts.request(cmd, script))
	if err != nil {
		if pipeline.IsUsage(err) {
			return fmt.Errorf("%w (see vfrchap --help)", err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if opts.verbose || opts.test {
		printReport(out, report, cfg.MkvmergeBinary())
	}
	if report.DryRun {
		fmt.Fprintln(out, "Test mode: no files were written")
		return nil
	}
	for _, path := range report.Written {
		fmt.Fprintf(out, "Wrote %s\n", path)
	}
	return nil
}

func printReport(out io.Writer, report pipeline.Report, mkvmerge string) {
	res := report.Trims
	fmt.Fprintf(out, "Source: %s\n", report.Source.Describe())
	if report.Output != nil {
		fmt.Fprintf(out, "Output: %s\n", report.Output.Describe())
	}

	headers := []string{"#", "Trim", "Output frames", "Start", "End"}
	rows := make([][]string, 0, len(res.Out))
	var kept int
	for i, span := range res.Out {
		end := "open"
		last := "end"
		if !span.Open {
			end = timecode.FormatTime(span.EndTs, timecode.Milli)
			last = humanize.Comma(int64(span.End))
			kept += span.End - span.Start + 1
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			res.Trims[i].String(),
			humanize.Comma(int64(span.Start)) + "-" + last,
			timecode.FormatTime(span.StartTs, timecode.Milli),
			end,
		})
	}
	fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight}))
	fmt.Fprintf(out, "Kept %s frames in %d trims\n", humanize.Comma(int64(kept)), len(res.Out))

	if report.Chapters != nil {
		fmt.Fprintf(out, "Chapters (%s):\n%s", report.ChapterFormat, report.Chapters.Chapters)
		if report.Chapters.UIDBase != 0 {
			fmt.Fprintf(out, "Chapter UID base: %d\n", report.Chapters.UIDBase)
		}
	}
	if len(report.Keyframes) > 0 {
		fmt.Fprintf(out, "Keyframes: %v\n", report.Keyframes)
	}
	if report.Audio != nil {
		fmt.Fprintf(out, "Audio cut: %s\n", report.Audio.Describe(mkvmerge))
		if report.Audio.Merge != nil {
			fmt.Fprintf(out, "Audio merge: %s %s\n", mkvmerge, strings.Join(report.Audio.Merge, " "))
		}
	}
}
