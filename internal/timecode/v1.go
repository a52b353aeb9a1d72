package timecode

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// ErrMissingAssume reports a v1 file without its "Assume <fps>" line.
var ErrMissingAssume = errors.New("v1 timecodes have no assumed fps")

// Override assigns Rate to the inclusive frame range [Start, End].
type Override struct {
	Start int
	End   int
	Rate  Rational
}

// V1 is a parsed v1 timecode file.
type V1 struct {
	Assume    Rational
	Overrides []Override
}

// ParseV1 reads the lines that follow the "# timecode format v1" header: an
// "Assume <fps>" line and any number of "<start>,<end>,<fps>" overrides.
// Blank lines and "#" comments are skipped.
func ParseV1(lines []string) (V1, error) {
	var v1 V1
	assumed := false
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !assumed {
			fields := strings.Fields(line)
			if len(fields) != 2 || !strings.EqualFold(fields[0], "assume") {
				return V1{}, fmt.Errorf("%w: line %d is %q", ErrMissingAssume, i+2, line)
			}
			rate, err := ParseRational(fields[1])
			if err != nil {
				return V1{}, fmt.Errorf("v1 assume: %w", err)
			}
			v1.Assume = rate
			assumed = true
			continue
		}
		ovr, err := parseOverride(line)
		if err != nil {
			return V1{}, fmt.Errorf("v1 line %d: %w", i+2, err)
		}
		v1.Overrides = append(v1.Overrides, ovr)
	}
	if !assumed {
		return V1{}, ErrMissingAssume
	}
	return v1, nil
}

func parseOverride(line string) (Override, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return Override{}, fmt.Errorf("override %q: want <start>,<end>,<fps>", line)
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Override{}, fmt.Errorf("override start %q: %w", parts[0], err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Override{}, fmt.Errorf("override end %q: %w", parts[1], err)
	}
	if start < 0 || end < start {
		return Override{}, fmt.Errorf("override range %d-%d is invalid", start, end)
	}
	rate, err := ParseRational(parts[2])
	if err != nil {
		return Override{}, fmt.Errorf("override fps: %w", err)
	}
	return Override{Start: start, End: end, Rate: rate}, nil
}

// MaterializeV1 expands v1 into frames per-frame nanosecond timestamps.
// Frame 0 is 0 and every later frame adds the NTSC-corrected duration of the
// rate that governs the previous frame: the last override containing it, or
// the assumed rate. Accumulation is exact and rounded once per frame.
func MaterializeV1(v1 V1, frames int) []int64 {
	if frames <= 0 {
		return nil
	}
	owner := make([]int32, frames)
	for i := range owner {
		owner[i] = -1
	}
	for i, ovr := range v1.Overrides {
		end := ovr.End
		if end >= frames {
			end = frames - 1
		}
		for f := ovr.Start; f <= end; f++ {
			owner[f] = int32(i)
		}
	}
	rates := make([]Rational, len(v1.Overrides)+1)
	rates[0] = CorrectToNTSC(v1.Assume)
	for i, ovr := range v1.Overrides {
		rates[i+1] = CorrectToNTSC(ovr.Rate)
	}
	return accumulate(frames, func(frame int) Rational { return rates[owner[frame]+1] })
}

// MaterializeCFR renders frames timestamps of a constant rate exactly as
// given, without NTSC snapping.
func MaterializeCFR(rate Rational, frames int) []int64 {
	if frames <= 0 {
		return nil
	}
	return accumulate(frames, func(int) Rational { return rate })
}

// accumulate walks frames, grouping runs that share a rate so each timestamp
// is segmentStart + n*duration computed exactly.
func accumulate(frames int, rateOf func(frame int) Rational) []int64 {
	out := make([]int64, frames)
	segStart := new(big.Rat)
	var segRate Rational
	var dur *big.Rat
	n := int64(0)
	x := new(big.Rat)
	for f := 0; f < frames; f++ {
		if f > 0 {
			rate := rateOf(f - 1)
			if dur == nil || !rate.Equal(segRate) {
				if dur != nil {
					x.SetInt64(n)
					x.Mul(x, dur)
					segStart.Add(segStart, x)
				}
				segRate = rate
				dur = new(big.Rat).SetFrac(
					new(big.Int).Mul(big.NewInt(rate.Den), big.NewInt(1_000_000_000)),
					big.NewInt(rate.Num),
				)
				n = 0
			}
			n++
		}
		if dur == nil {
			out[f] = 0
			continue
		}
		x.SetInt64(n)
		x.Mul(x, dur)
		x.Add(x, segStart)
		out[f] = roundHalfEven(x).Int64()
	}
	return out
}
