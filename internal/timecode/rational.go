package timecode

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

var (
	// ErrInvalidRate reports a frame rate that is not a positive rational.
	ErrInvalidRate = errors.New("invalid frame rate")
	// ErrOverflow reports a rational whose terms do not fit in 64 bits.
	ErrOverflow = errors.New("rational out of range")
)

var rateRe = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*(?:[/:]\s*(\d+(?:\.\d+)?))?\s*$`)

// Rational is an exact, reduced numerator/denominator pair. Den is always
// positive for values built by NewRational or ParseRational.
type Rational struct {
	Num int64
	Den int64
}

// NewRational reduces num/den to lowest terms.
func NewRational(num, den int64) (Rational, error) {
	if den == 0 {
		return Rational{}, fmt.Errorf("%w: zero denominator", ErrInvalidRate)
	}
	return fromRat(big.NewRat(num, den))
}

// MustRational is NewRational for constants known to be valid.
func MustRational(num, den int64) Rational {
	r, err := NewRational(num, den)
	if err != nil {
		panic(err)
	}
	return r
}

// ParseRational parses "24", "23.976", "24000/1001", "30000:1001" or a ratio
// of decimals such as "24/1.001". Decimals are read exactly.
func ParseRational(value string) (Rational, error) {
	m := rateRe.FindStringSubmatch(value)
	if m == nil {
		return Rational{}, fmt.Errorf("%w: %q", ErrInvalidRate, strings.TrimSpace(value))
	}
	num, ok := new(big.Rat).SetString(m[1])
	if !ok {
		return Rational{}, fmt.Errorf("%w: %q", ErrInvalidRate, m[1])
	}
	if m[2] != "" {
		den, ok := new(big.Rat).SetString(m[2])
		if !ok || den.Sign() == 0 {
			return Rational{}, fmt.Errorf("%w: %q", ErrInvalidRate, value)
		}
		num.Quo(num, den)
	}
	if num.Sign() <= 0 {
		return Rational{}, fmt.Errorf("%w: %q must be positive", ErrInvalidRate, strings.TrimSpace(value))
	}
	return fromRat(num)
}

func fromRat(x *big.Rat) (Rational, error) {
	if !x.Num().IsInt64() || !x.Denom().IsInt64() {
		return Rational{}, fmt.Errorf("%w: %s", ErrOverflow, x.RatString())
	}
	return Rational{Num: x.Num().Int64(), Den: x.Denom().Int64()}, nil
}

func (r Rational) rat() *big.Rat {
	if r.Den == 0 {
		return new(big.Rat)
	}
	return big.NewRat(r.Num, r.Den)
}

// Float64 returns the nearest float64 value.
func (r Rational) Float64() float64 {
	f, _ := r.rat().Float64()
	return f
}

// IsZero reports whether r is the zero value.
func (r Rational) IsZero() bool {
	return r.Num == 0
}

// Equal compares the values exactly.
func (r Rational) Equal(other Rational) bool {
	return r.rat().Cmp(other.rat()) == 0
}

// String renders "24" for integers and "24000/1001" otherwise.
func (r Rational) String() string {
	if r.Den == 1 {
		return fmt.Sprintf("%d", r.Num)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// roundHalfEven rounds x to the nearest integer, ties to even.
func roundHalfEven(x *big.Rat) *big.Int {
	num := x.Num()
	den := x.Denom()
	q, m := new(big.Int).QuoRem(num, den, new(big.Int))
	twice := new(big.Int).Abs(m)
	twice.Lsh(twice, 1)
	cmp := twice.Cmp(den)
	if cmp > 0 || (cmp == 0 && q.Bit(0) == 1) {
		if num.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	return q
}

// divRound divides a by b (b > 0) rounding half to even.
func divRound(a, b int64) int64 {
	if b == 1 {
		return a
	}
	return roundHalfEven(big.NewRat(a, b)).Int64()
}

var pow10 = [...]int64{1, 10, 100, 1_000, 10_000, 100_000, 1_000_000, 10_000_000, 100_000_000, 1_000_000_000}
