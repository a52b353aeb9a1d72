package trims

import (
	"errors"
	"fmt"

	"vfrchap/internal/timecode"
)

// ErrRetargetUnderflow reports a collision tie-break that pushed a boundary
// before frame 0. It happens only for runs of trims shorter than one output
// frame.
var ErrRetargetUnderflow = errors.New("retargeted boundary moved before frame 0")

type boundary struct {
	frame   int
	isEnd   bool
	bumped  bool
	spanIdx int
}

// Retarget re-expresses gapless spans numbered in src at the rate of dst.
//
// Boundaries are visited in order (start, end, start, ...). Each maps to the
// last destination frame whose timestamp does not pass the boundary's source
// timestamp; the search only moves forward. When a boundary lands on the
// frame of the boundary before it, that earlier boundary steps back one
// frame. End boundaries are searched at the exclusive frame after the span,
// so ends that were not stepped back by a following start step back once at
// the end of the pass. Open ends stay open.
func Retarget(spans []Span, src, dst timecode.Source) ([]Span, error) {
	var bounds []boundary
	n := 0
	visit := func(srcFrame int, isEnd bool, spanIdx int) error {
		target, err := timecode.TimestampNs(src, srcFrame)
		if err != nil {
			return err
		}
		if n, err = forward(dst, n, target); err != nil {
			return err
		}
		if k := len(bounds); k > 0 && bounds[k-1].frame == n {
			bounds[k-1].frame--
			bounds[k-1].bumped = true
		}
		bounds = append(bounds, boundary{frame: n, isEnd: isEnd, spanIdx: spanIdx})
		return nil
	}
	for i, s := range spans {
		if err := visit(s.Start, false, i); err != nil {
			return nil, err
		}
		if s.Open {
			continue
		}
		if err := visit(s.End+1, true, i); err != nil {
			return nil, err
		}
	}

	out := make([]Span, len(spans))
	for i := range spans {
		out[i] = Span{Open: spans[i].Open}
	}
	for _, b := range bounds {
		frame := b.frame
		if b.isEnd && !b.bumped {
			frame--
		}
		if frame < 0 {
			return nil, fmt.Errorf("%w: span %d", ErrRetargetUnderflow, b.spanIdx+1)
		}
		if b.isEnd {
			ts, err := timecode.TimestampNs(dst, frame+1)
			if err != nil {
				return nil, err
			}
			out[b.spanIdx].End, out[b.spanIdx].EndTs = frame, ts
			continue
		}
		ts, err := timecode.TimestampNs(dst, frame)
		if err != nil {
			return nil, err
		}
		out[b.spanIdx].Start, out[b.spanIdx].StartTs = frame, ts
	}
	return out, nil
}

// forward advances from frame n while the next destination frame starts no
// later than target. One nanosecond of slack absorbs rounding when both
// timelines place a frame at the same instant.
func forward(dst timecode.Source, n int, target int64) (int, error) {
	for {
		next, err := timecode.TimestampNs(dst, n+1)
		if err != nil {
			return 0, err
		}
		if next > target+1 {
			return n, nil
		}
		n++
	}
}
