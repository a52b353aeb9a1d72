package timecode

import (
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sort"

	"vfrchap/internal/logging"
)

var (
	// ErrNegativeFrame reports a query for a frame before the start of the source.
	ErrNegativeFrame = errors.New("negative frame number")
	// ErrExtrapolation reports a VFR query past the table that cannot be
	// extrapolated because fewer than two samples exist.
	ErrExtrapolation = errors.New("cannot extrapolate timecodes")
)

// Scale selects the unit of a returned timestamp.
type Scale int

const (
	Nanoseconds Scale = iota
	Microseconds
	Milliseconds
	Seconds
)

func (s Scale) divisor() int64 {
	switch s {
	case Microseconds:
		return 1_000
	case Milliseconds:
		return 1_000_000
	case Seconds:
		return 1_000_000_000
	default:
		return 1
	}
}

// Kind names the variant of a Source for display.
type Kind int

const (
	KindCFR Kind = iota
	KindVFR
)

func (k Kind) String() string {
	if k == KindVFR {
		return "vfr"
	}
	return "cfr"
}

// Source maps frames to timestamps. It is implemented only by *CFR and *VFR.
type Source interface {
	// Timestamp returns the presentation time of frame in the given scale.
	Timestamp(frame int, scale Scale) (int64, error)
	// FrameAt returns the frame displayed at ts nanoseconds.
	FrameAt(ts int64) (int, error)
	// Kind reports the variant.
	Kind() Kind
	// Describe is a short human-readable form used in logs.
	Describe() string

	sealed()
}

// TimestampNs is Timestamp at nanosecond scale.
func TimestampNs(src Source, frame int) (int64, error) {
	return src.Timestamp(frame, Nanoseconds)
}

// SameTimebase reports whether two sources produce identical timestamps,
// which is only decidable for two CFR sources.
func SameTimebase(a, b Source) bool {
	ca, okA := a.(*CFR)
	cb, okB := b.(*CFR)
	return okA && okB && ca.Rate.Equal(cb.Rate)
}

// CFR is a constant frame-rate source.
type CFR struct {
	Rate Rational
}

// NewCFR builds a constant-rate source. The rate is used as given; NTSC
// snapping is the caller's decision.
func NewCFR(rate Rational) (*CFR, error) {
	if rate.Num <= 0 || rate.Den <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRate, rate)
	}
	return &CFR{Rate: rate}, nil
}

func (c *CFR) sealed() {}

// Kind implements Source.
func (c *CFR) Kind() Kind { return KindCFR }

// Describe implements Source.
func (c *CFR) Describe() string { return c.Rate.String() + " fps" }

// Timestamp computes round(10^9 * frame * den / num) at the requested scale
// with exact arithmetic.
func (c *CFR) Timestamp(frame int, scale Scale) (int64, error) {
	if frame < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeFrame, frame)
	}
	unitsPerSecond := 1_000_000_000 / scale.divisor()
	n := new(big.Int).Mul(big.NewInt(int64(frame)), big.NewInt(c.Rate.Den))
	n.Mul(n, big.NewInt(unitsPerSecond))
	x := new(big.Rat).SetFrac(n, big.NewInt(c.Rate.Num))
	return roundHalfEven(x).Int64(), nil
}

// FrameAt computes round(ts * num / (den * 10^9)).
func (c *CFR) FrameAt(ts int64) (int, error) {
	if ts < 0 {
		return 0, fmt.Errorf("%w: timestamp %d", ErrNegativeFrame, ts)
	}
	n := new(big.Int).Mul(big.NewInt(ts), big.NewInt(c.Rate.Num))
	d := new(big.Int).Mul(big.NewInt(c.Rate.Den), big.NewInt(1_000_000_000))
	return int(roundHalfEven(new(big.Rat).SetFrac(n, d)).Int64()), nil
}

// VFR is a variable frame-rate source backed by one nanosecond timestamp per
// frame. Queries past the table are answered by extrapolating the average
// rate of the table's tail. A VFR is not safe for concurrent use.
type VFR struct {
	table  []int64
	logger *slog.Logger
	ext    *extrapolation
}

type extrapolation struct {
	rate   Rational
	baseAt int
	baseTs int64
	err    error
}

// NewVFR wraps a per-frame nanosecond table. The table must be non-decreasing.
func NewVFR(table []int64, logger *slog.Logger) (*VFR, error) {
	for i := 1; i < len(table); i++ {
		if table[i] < table[i-1] {
			return nil, fmt.Errorf("%w: frame %d (%d) precedes frame %d (%d)", ErrNotMonotonic, i, table[i], i-1, table[i-1])
		}
	}
	return &VFR{table: table, logger: logging.NewComponentLogger(logger, "timecode")}, nil
}

func (v *VFR) sealed() {}

// Kind implements Source.
func (v *VFR) Kind() Kind { return KindVFR }

// Describe implements Source.
func (v *VFR) Describe() string { return fmt.Sprintf("vfr table (%d frames)", len(v.table)) }

// Len returns the number of stored frames.
func (v *VFR) Len() int { return len(v.table) }

// Table returns a copy of the stored timestamps.
func (v *VFR) Table() []int64 {
	out := make([]int64, len(v.table))
	copy(out, v.table)
	return out
}

// Timestamp returns the stored value for frames inside the table and an
// extrapolated value past it.
func (v *VFR) Timestamp(frame int, scale Scale) (int64, error) {
	if frame < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeFrame, frame)
	}
	var ns int64
	if frame < len(v.table) {
		ns = v.table[frame]
	} else {
		ext, err := v.extrapolate()
		if err != nil {
			return 0, err
		}
		ns = ext.at(frame)
	}
	return divRound(ns, scale.divisor()), nil
}

// FrameAt returns the frame whose timestamp is nearest ts, preferring the
// earlier frame on ties.
func (v *VFR) FrameAt(ts int64) (int, error) {
	if ts < 0 {
		return 0, fmt.Errorf("%w: timestamp %d", ErrNegativeFrame, ts)
	}
	n := len(v.table)
	if n > 0 && ts <= v.table[n-1] {
		i := sort.Search(n, func(i int) bool { return v.table[i] >= ts })
		if i > 0 && ts-v.table[i-1] <= v.table[i]-ts {
			return i - 1, nil
		}
		return i, nil
	}
	ext, err := v.extrapolate()
	if err != nil {
		return 0, err
	}
	return ext.frameAt(ts), nil
}

// Extend grows the table to frames entries using the extrapolated rate.
func (v *VFR) Extend(frames int) error {
	if frames <= len(v.table) {
		return nil
	}
	ext, err := v.extrapolate()
	if err != nil {
		return err
	}
	grown := make([]int64, frames)
	copy(grown, v.table)
	for i := len(v.table); i < frames; i++ {
		grown[i] = ext.at(i)
	}
	v.table = grown
	return nil
}

// ExtrapolatedRate returns the rate used past the end of the table.
func (v *VFR) ExtrapolatedRate() (Rational, error) {
	ext, err := v.extrapolate()
	if err != nil {
		return Rational{}, err
	}
	return ext.rate, nil
}

// extrapolate averages the trailing ~1% of frame deltas once and caches the
// resulting NTSC-corrected rate.
func (v *VFR) extrapolate() (*extrapolation, error) {
	if v.ext != nil {
		return v.ext, v.ext.err
	}
	n := len(v.table)
	ext := &extrapolation{}
	v.ext = ext
	if n < 2 {
		ext.err = fmt.Errorf("%w: table has %d sample(s), need at least 2", ErrExtrapolation, n)
		return ext, ext.err
	}
	sample := n / 100
	if sample < 1 {
		sample = 1
	}
	var sum int64
	for i := n - sample; i < n; i++ {
		sum += v.table[i] - v.table[i-1]
	}
	avgMs := float64(sum) / float64(sample) / 1e6
	rate, err := EstimateRate(avgMs)
	if err != nil {
		ext.err = fmt.Errorf("%w: %w", ErrExtrapolation, err)
		return ext, ext.err
	}
	ext.rate = rate
	ext.baseAt = n - 1
	ext.baseTs = v.table[n-1]
	logging.WarnWithContext(v.logger, "timecodes shorter than requested; extrapolating", "timecode_extrapolated",
		logging.Int("frames", n),
		logging.Int("sampled_deltas", sample),
		logging.String("rate", rate.String()),
		logging.String(logging.FieldErrorHint, "supply a timecode file covering every frame"),
		logging.String(logging.FieldImpact, "timestamps past the table assume a constant rate"),
	)
	return ext, nil
}

func (e *extrapolation) at(frame int) int64 {
	n := new(big.Int).Mul(big.NewInt(int64(frame-e.baseAt)), big.NewInt(e.rate.Den))
	n.Mul(n, big.NewInt(1_000_000_000))
	step := roundHalfEven(new(big.Rat).SetFrac(n, big.NewInt(e.rate.Num))).Int64()
	return e.baseTs + step
}

func (e *extrapolation) frameAt(ts int64) int {
	n := new(big.Int).Mul(big.NewInt(ts-e.baseTs), big.NewInt(e.rate.Num))
	d := new(big.Int).Mul(big.NewInt(e.rate.Den), big.NewInt(1_000_000_000))
	return e.baseAt + int(roundHalfEven(new(big.Rat).SetFrac(n, d)).Int64())
}
