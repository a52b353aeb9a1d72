package trims

import (
	"errors"
	"fmt"
	"log/slog"

	"vfrchap/internal/logging"
	"vfrchap/internal/timecode"
)

var (
	// ErrOpenTrimNotLast reports an open-ended trim followed by another trim.
	ErrOpenTrimNotLast = errors.New("only the last trim may run to the end of the source")
	// ErrInvalidTrim reports a trim whose last frame precedes its first.
	ErrInvalidTrim = errors.New("invalid trim")
	// ErrRetargetVFR reports an output rate requested for a VFR source.
	ErrRetargetVFR = errors.New("an output frame rate cannot be combined with a timecodes file")
	// ErrNoInput reports an empty trim list.
	ErrNoInput = errors.New("no trims to resolve")
)

// Span is one trim with an explicit last frame. EndTs is the timestamp of
// the frame after End, so consecutive spans share a boundary timestamp. Open
// spans keep End and EndTs at zero.
type Span struct {
	Start   int
	End     int
	StartTs int64
	EndTs   int64
	Open    bool
}

// Result holds index-aligned views of the resolved trims.
type Result struct {
	// Trims are the calls as parsed.
	Trims []Trim
	// Raw are the trims on the source timeline.
	Raw []Span
	// Out are the trims renumbered from zero without gaps, expressed at the
	// output rate when one was set.
	Out []Span
	// AudioCuts are source timestamps where the audio must be split. Joins
	// between adjacent trims produce no cut.
	AudioCuts []int64
	// Retargeted reports whether Out uses the output rate.
	Retargeted bool
}

// IncludesStart reports whether the edit keeps the first source frame.
func (r Result) IncludesStart() bool {
	return len(r.Raw) > 0 && r.Raw[0].Start == 0
}

// StartFrames returns the first output frame of every trim.
func (r Result) StartFrames() []int {
	out := make([]int, len(r.Out))
	for i, s := range r.Out {
		out[i] = s.Start
	}
	return out
}

// Resolver resolves trims against a source timeline.
type Resolver struct {
	source    timecode.Source
	output    timecode.Source
	audioCuts bool
	logger    *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithOutput re-expresses resolved boundaries at the rate of dst.
func WithOutput(dst timecode.Source) Option {
	return func(r *Resolver) {
		r.output = dst
	}
}

// WithAudioCuts enables collection of audio cut points.
func WithAudioCuts(enabled bool) Option {
	return func(r *Resolver) {
		r.audioCuts = enabled
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver validates the source combination before any trim is resolved.
func NewResolver(source timecode.Source, opts ...Option) (*Resolver, error) {
	if source == nil {
		return nil, errors.New("trims: nil timecode source")
	}
	r := &Resolver{source: source}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "trims")
	if r.output != nil && source.Kind() == timecode.KindVFR {
		return nil, ErrRetargetVFR
	}
	if r.output != nil && timecode.SameTimebase(source, r.output) {
		r.output = nil
	}
	return r, nil
}

// Resolve maps trims, in order, to gapless output numbering. Frames removed
// before a trim accumulate in offset and their duration in offsetTs; both are
// subtracted from the trim's source position.
func (r *Resolver) Resolve(trims []Trim) (Result, error) {
	if len(trims) == 0 {
		return Result{}, ErrNoInput
	}
	res := Result{
		Trims: append([]Trim(nil), trims...),
		Raw:   make([]Span, 0, len(trims)),
		Out:   make([]Span, 0, len(trims)),
	}

	var offset int
	var offsetTs int64
	for i, t := range trims {
		raw, err := r.span(t)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", t, err)
		}
		if raw.Open && i != len(trims)-1 {
			return Result{}, fmt.Errorf("%s (trim %d of %d): %w", t, i+1, len(trims), ErrOpenTrimNotLast)
		}

		adjacent := false
		if i == 0 {
			offset = raw.Start
			offsetTs = raw.StartTs
		} else {
			prev := res.Raw[i-1]
			gap := raw.Start - (prev.End + 1)
			adjacent = gap == 0
			if gap < 0 {
				logging.WarnWithContext(r.logger, "trims overlap; overlapping frames are repeated", "trims_overlap",
					logging.String("trim", t.String()),
					logging.Int("previous_end", prev.End),
					logging.String(logging.FieldErrorHint, "check the trim order in the script"),
					logging.String(logging.FieldImpact, "output contains the overlapping frames twice"),
				)
			}
			offset += gap
			if !adjacent {
				offsetTs += raw.StartTs - prev.EndTs
			}
		}

		if r.audioCuts {
			switch {
			case adjacent:
				if n := len(res.AudioCuts); n > 0 {
					res.AudioCuts = res.AudioCuts[:n-1]
				}
			case raw.Start != 0:
				res.AudioCuts = append(res.AudioCuts, raw.StartTs)
			}
			if !raw.Open {
				res.AudioCuts = append(res.AudioCuts, raw.EndTs)
			}
		}

		out := Span{
			Start:   raw.Start - offset,
			StartTs: raw.StartTs - offsetTs,
			Open:    raw.Open,
		}
		if !raw.Open {
			out.End = raw.End - offset
			out.EndTs = raw.EndTs - offsetTs
		}
		res.Raw = append(res.Raw, raw)
		res.Out = append(res.Out, out)

		r.logger.Debug("resolved trim",
			logging.String("trim", t.String()),
			logging.Int("offset", offset),
			logging.Int64("offset_ns", offsetTs),
			logging.Int("out_start", out.Start),
			logging.Int("out_end", out.End),
			logging.Bool("adjacent", adjacent),
		)
	}

	if r.output != nil {
		retargeted, err := Retarget(res.Out, r.source, r.output)
		if err != nil {
			return Result{}, err
		}
		res.Out = retargeted
		res.Retargeted = true
		r.logger.Debug("retargeted output boundaries",
			logging.String("from", r.source.Describe()),
			logging.String("to", r.output.Describe()),
		)
	}
	return res, nil
}

func (r *Resolver) span(t Trim) (Span, error) {
	if t.Start < 0 {
		return Span{}, fmt.Errorf("%w: negative start", ErrInvalidTrim)
	}
	s := Span{Start: t.Start, Open: t.Open()}
	var err error
	if s.StartTs, err = timecode.TimestampNs(r.source, t.Start); err != nil {
		return Span{}, err
	}
	if s.Open {
		return s, nil
	}
	last, _ := t.Last()
	if last < t.Start {
		return Span{}, fmt.Errorf("%w: last frame %d precedes first frame %d", ErrInvalidTrim, last, t.Start)
	}
	s.End = last
	if s.EndTs, err = timecode.TimestampNs(r.source, last+1); err != nil {
		return Span{}, err
	}
	return s, nil
}
