package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"vfrchap/internal/audiocut"
	"vfrchap/internal/chapters"
	"vfrchap/internal/config"
	"vfrchap/internal/deps"
	"vfrchap/internal/logging"
	"vfrchap/internal/preflight"
	"vfrchap/internal/qpfile"
	"vfrchap/internal/timecode"
	"vfrchap/internal/trims"
)

// AudioSplitter probes and runs the audio cutter.
type AudioSplitter interface {
	Probe(ctx context.Context, input string) (audiocut.Probe, error)
	Run(ctx context.Context, plan audiocut.Plan) error
}

// Report describes what a job computed and wrote.
type Report struct {
	RunID  string
	Trims  trims.Result
	Source timecode.Source
	// Output is the output-rate source, nil when trims were not renumbered.
	Output timecode.Source

	ChapterFormat chapters.Format
	Chapters      *chapters.Rendered
	// Keyframes are the frames written to the qpfile.
	Keyframes []int
	// TemplateKeyframes are the frames a template asked for.
	TemplateKeyframes []int

	Audio *audiocut.Plan

	Written []string
	DryRun  bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithSplitter replaces the mkvmerge splitter. The mkvmerge availability
// check is skipped for replaced splitters.
func WithSplitter(splitter AudioSplitter) Option {
	return func(r *Runner) {
		r.splitter = splitter
		r.checkBinary = false
	}
}

// Runner executes jobs with one configuration.
type Runner struct {
	cfg         *config.Config
	logger      *slog.Logger
	splitter    AudioSplitter
	checkBinary bool
}

// NewRunner builds a Runner. cfg nil uses the defaults.
func NewRunner(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	r := &Runner{cfg: cfg, logger: logging.NewComponentLogger(logger, "pipeline"), checkBinary: true}
	for _, opt := range opts {
		opt(r)
	}
	if r.splitter == nil {
		r.splitter = audiocut.NewSplitter(
			audiocut.WithBinary(cfg.MkvmergeBinary()),
			audiocut.WithTimeout(cfg.MkvmergeTimeout()),
			audiocut.WithLogger(logger),
		)
	}
	return r
}

// outputs collects rendered files until every step has succeeded.
type outputs struct {
	timecodes     func() error
	ofpsTimecodes func() error
	qpfile        func() error
	templateQP    func() error
	chapters      func() ([]string, error)
}

// Run executes req.
func (r *Runner) Run(ctx context.Context, req Request) (Report, error) {
	if err := req.Validate(); err != nil {
		return Report{}, err
	}
	runID := uuid.NewString()
	logger := r.logger.With(logging.String("run_id", runID))
	report := Report{RunID: runID, DryRun: req.DryRun}

	found, err := trims.ParseScriptFile(req.Script, req.Select)
	if err != nil {
		return Report{}, err
	}
	needed := trims.FramesNeeded(found)

	fps := req.FPS
	if fps == "" {
		fps = r.cfg.Timecodes.DefaultFPS
	}
	src, err := timecode.Parse(fps, needed, timecode.ParseOptions{Logger: logger})
	if err != nil {
		return Report{}, err
	}
	report.Source = src

	var dst timecode.Source
	if req.OFPS != "" {
		if src.Kind() == timecode.KindVFR {
			return Report{}, fmt.Errorf("%w: %w", ErrUsage, trims.ErrRetargetVFR)
		}
		if dst, err = timecode.Parse(req.OFPS, needed, timecode.ParseOptions{Logger: logger}); err != nil {
			return Report{}, fmt.Errorf("output rate: %w", err)
		}
	}

	resolver, err := trims.NewResolver(src,
		trims.WithOutput(dst),
		trims.WithAudioCuts(req.Input != ""),
		trims.WithLogger(logger),
	)
	if err != nil {
		return Report{}, err
	}
	res, err := resolver.Resolve(found)
	if err != nil {
		return Report{}, err
	}
	report.Trims = res
	if res.Retargeted {
		report.Output = dst
	}
	logger.Info("trims resolved",
		logging.String(logging.FieldInput, req.Script),
		logging.Int("trims", len(res.Out)),
		logging.String("source", src.Describe()),
		logging.Bool("retargeted", res.Retargeted),
	)

	var out outputs
	if req.Timecodes != "" {
		out.timecodes = func() error {
			return timecode.WriteSource(src, timecode.OutputFrames(src, needed), timecode.ParseOptions{OutputPath: req.Timecodes})
		}
		if res.Retargeted {
			frames := timecode.OutputFrames(dst, outputFrames(res.Out))
			out.ofpsTimecodes = func() error {
				return timecode.WriteSource(dst, frames, timecode.ParseOptions{OutputPath: req.OFPSTimecodesPath()})
			}
		}
	}

	if req.QPFile != "" {
		report.Keyframes = res.StartFrames()
		opts := qpfile.Options{IDR: req.IDR || r.cfg.Keyframes.IDR}
		out.qpfile = func() error { return qpfile.WriteFile(req.QPFile, report.Keyframes, opts) }
	}

	if req.Chapters != "" {
		if err := r.renderChapters(req, res, &report, &out); err != nil {
			return Report{}, err
		}
	}

	if req.Input != "" {
		if err := r.planAudio(ctx, req, res, &report, logger); err != nil {
			return Report{}, err
		}
	}

	if req.DryRun {
		logger.Info("dry run; nothing written")
		return report, nil
	}

	if err := preflight.Err(preflight.RunAll(r.preflightPlan(req, report))); err != nil {
		return Report{}, err
	}
	if err := r.write(out, req, &report); err != nil {
		return report, err
	}

	if report.Audio != nil {
		if err := r.splitter.Run(ctx, *report.Audio); err != nil {
			logging.ErrorWithContext(logger, "audio cut failed", "audiocut_failed",
				logging.String(logging.FieldInput, req.Input),
				logging.String("error", err.Error()),
				logging.String(logging.FieldErrorHint, "rerun with --test to inspect the mkvmerge arguments"),
			)
			return report, err
		}
		report.Written = append(report.Written, report.Audio.Output)
	}
	logger.Info("run complete", logging.Int("files", len(report.Written)))
	return report, nil
}

func (r *Runner) renderChapters(req Request, res trims.Result, report *Report, out *outputs) error {
	writer := chapters.NewWriter(req.Chapters, r.logger)
	report.ChapterFormat = writer.Format
	languages := []string{r.cfg.Chapters.Language}
	var countries []string
	if r.cfg.Chapters.Country != "" {
		countries = []string{r.cfg.Chapters.Country}
	}

	var doc chapters.Document
	if req.Template != "" {
		tpl, err := chapters.LoadTemplate(req.Template)
		if err != nil {
			return err
		}
		built, err := tpl.Build(res.Out, req.UID, languages)
		if err != nil {
			return err
		}
		doc = built.Document
		if len(doc.Countries) == 0 {
			doc.Countries = countries
		}
		if built.Keyframes != nil {
			report.TemplateKeyframes = built.Keyframes
			path := chapters.QPFilePath(req.Chapters)
			opts := qpfile.Options{IDR: req.IDR || r.cfg.Keyframes.IDR}
			out.templateQP = func() error { return qpfile.WriteFile(path, built.Keyframes, opts) }
		}
	} else {
		names, err := chapters.Names(req.ChapterNames, len(res.Out), r.cfg.ChapterName)
		if err != nil {
			return err
		}
		doc = chapters.Single(chapters.FromSpans(res.Out, names), languages, countries, req.UID)
	}

	rendered, err := writer.Render(doc)
	if err != nil {
		return err
	}
	report.Chapters = &rendered
	out.chapters = func() ([]string, error) { return writer.Save(req.Chapters, rendered) }
	return nil
}

func (r *Runner) planAudio(ctx context.Context, req Request, res trims.Result, report *Report, logger *slog.Logger) error {
	if len(res.AudioCuts) == 0 {
		logging.WarnWithContext(logger, "edit keeps the whole audio track; skipping audio cut", "audio_cut_skipped",
			logging.String(logging.FieldInput, req.Input),
			logging.String(logging.FieldErrorHint, "remove --input when the edit has no cuts"),
			logging.String(logging.FieldImpact, "no cut audio file is written"),
		)
		return nil
	}
	if r.checkBinary && !req.DryRun {
		if missing := deps.Missing(deps.CheckBinaries(deps.Requirements(r.cfg, true))); len(missing) > 0 {
			return fmt.Errorf("%s: %s", missing[0].Name, missing[0].Detail)
		}
	}
	// A dry run plans for a current mkvmerge without probing the input.
	probe := audiocut.Probe{Version: audiocut.PartsSplitVersion}
	if !req.DryRun {
		var err error
		if probe, err = r.splitter.Probe(ctx, req.Input); err != nil {
			return err
		}
	}
	merge := req.Merge || r.cfg.Audio.Merge
	plan, err := audiocut.BuildPlan(audiocut.Job{
		Input:         req.Input,
		Output:        req.AudioOutput(),
		Cuts:          res.AudioCuts,
		IncludesStart: res.IncludesStart(),
		Delay:         req.Delay,
		SBR:           req.SBR,
		Merge:         merge,
		Remove:        req.Remove || r.cfg.Audio.RemoveSplits,
		Verbose:       req.Verbose,
	}, probe)
	if err != nil {
		return err
	}
	report.Audio = &plan
	return nil
}

func (r *Runner) preflightPlan(req Request, report Report) preflight.Plan {
	plan := preflight.Plan{
		Inputs: []preflight.Target{
			{Name: "Script", Path: req.Script},
			{Name: "Chapter names", Path: req.ChapterNames},
			{Name: "Template", Path: req.Template},
		},
		Outputs: []preflight.Target{
			{Name: "Timecodes", Path: req.Timecodes},
			{Name: "Output timecodes", Path: req.OFPSTimecodesPath()},
			{Name: "QP file", Path: req.QPFile},
			{Name: "Chapters", Path: req.Chapters},
		},
	}
	if report.Chapters != nil && report.Chapters.Tags != nil {
		plan.Outputs = append(plan.Outputs, preflight.Target{Name: "Chapter tags", Path: chapters.TagsPath(req.Chapters)})
	}
	if report.TemplateKeyframes != nil {
		plan.Outputs = append(plan.Outputs, preflight.Target{Name: "Template QP file", Path: chapters.QPFilePath(req.Chapters)})
	}
	if report.Audio != nil {
		plan.Inputs = append(plan.Inputs, preflight.Target{Name: "Audio", Path: req.Input})
		plan.Outputs = append(plan.Outputs, preflight.Target{Name: "Cut audio", Path: report.Audio.Output})
	}
	return plan
}

func (r *Runner) write(out outputs, req Request, report *Report) error {
	steps := []struct {
		path string
		fn   func() error
	}{
		{req.Timecodes, out.timecodes},
		{req.OFPSTimecodesPath(), out.ofpsTimecodes},
		{req.QPFile, out.qpfile},
		{chapters.QPFilePath(req.Chapters), out.templateQP},
	}
	for _, step := range steps {
		if step.fn == nil {
			continue
		}
		if err := step.fn(); err != nil {
			return err
		}
		report.Written = append(report.Written, step.path)
	}
	if out.chapters != nil {
		written, err := out.chapters()
		report.Written = append(report.Written, written...)
		if err != nil {
			return err
		}
	}
	return nil
}

// outputFrames is the number of output-rate frames the resolved trims span,
// plus one frame past the end.
func outputFrames(spans []trims.Span) int {
	last := spans[len(spans)-1]
	end := last.End
	if last.Open {
		end = last.Start
	}
	return end + 2
}

// IsUsage reports whether err is a usage error that should print help.
func IsUsage(err error) bool {
	return errors.Is(err, ErrUsage) || errors.Is(err, trims.ErrRetargetVFR)
}
