package timecode

import (
	"fmt"
	"math"
	"math/big"
)

// Integer broadcast rates that have a 1000/1001 drop-frame counterpart. The
// PAL family (25, 50, 100) has none and is left alone.
var ntscBases = []int64{24, 30, 48, 60, 120}

// CorrectToNTSC snaps rates that sit within half the gap between an integer
// broadcast rate N and N*1000/1001 of either value to the exact drop-frame
// rational. Everything else, including every multiple of 25, is returned
// unchanged.
func CorrectToNTSC(r Rational) Rational {
	x := r.rat()
	for _, n := range ntscBases {
		nominal := big.NewRat(n, 1)
		drop := big.NewRat(n*1000, 1001)
		half := new(big.Rat).Sub(nominal, drop)
		half.Quo(half, big.NewRat(2, 1))
		if within(x, nominal, half) || within(x, drop, half) {
			return Rational{Num: n * 1000, Den: 1001}
		}
	}
	return r
}

func within(x, target, tolerance *big.Rat) bool {
	d := new(big.Rat).Sub(x, target)
	d.Abs(d)
	return d.Cmp(tolerance) <= 0
}

// FrameDurationMs returns the per-frame duration in milliseconds of the
// NTSC-corrected rate.
func FrameDurationMs(r Rational) float64 {
	c := CorrectToNTSC(r)
	if c.Num == 0 {
		return 0
	}
	return 1000 * float64(c.Den) / float64(c.Num)
}

// EstimateRate converts an averaged frame duration in milliseconds into a
// rate. The estimate is quantized to a multiple of 1/1001 fps before NTSC
// correction so float noise from the average does not leak into the
// rational.
func EstimateRate(avgFrameMs float64) (Rational, error) {
	if avgFrameMs <= 0 || math.IsNaN(avgFrameMs) || math.IsInf(avgFrameMs, 0) {
		return Rational{}, fmt.Errorf("%w: average frame duration %vms", ErrInvalidRate, avgFrameMs)
	}
	fps := 1000 / avgFrameMs
	num := int64(math.Round(fps * 1001))
	if num <= 0 {
		return Rational{}, fmt.Errorf("%w: estimated %v fps", ErrInvalidRate, fps)
	}
	r, err := NewRational(num, 1001)
	if err != nil {
		return Rational{}, err
	}
	return CorrectToNTSC(r), nil
}
