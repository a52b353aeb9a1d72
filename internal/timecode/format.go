package timecode

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Precision selects the fractional digits used by FormatTime.
type Precision int

const (
	// Nano renders nine fractional digits.
	Nano Precision = iota
	// Milli renders three fractional digits.
	Milli
)

// ErrInvalidTime reports an unparseable HH:MM:SS timestamp.
var ErrInvalidTime = errors.New("invalid timestamp")

var timeRe = regexp.MustCompile(`^\s*(\d+):(\d{1,2}):(\d{1,2})(?:\.(\d{1,9}))?\s*$`)

// FormatTime renders a nanosecond timestamp as HH:MM:SS.fffffffff or, with
// Milli, HH:MM:SS.fff. Rounding to milliseconds happens before the fields are
// split so carries propagate into seconds, minutes and hours.
func FormatTime(ns int64, p Precision) string {
	sign := ""
	if ns < 0 {
		sign = "-"
		ns = -ns
	}
	unit, digits := int64(1), 9
	if p == Milli {
		unit, digits = 1_000_000, 3
	}
	ticks := divRound(ns, unit)
	perSecond := pow10[digits]
	frac := ticks % perSecond
	secs := ticks / perSecond
	return fmt.Sprintf("%s%02d:%02d:%02d.%0*d", sign, secs/3600, secs/60%60, secs%60, digits, frac)
}

// ParseTime reads HH:MM:SS with up to nine fractional digits into nanoseconds.
func ParseTime(value string) (int64, error) {
	m := timeRe.FindStringSubmatch(value)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, strings.TrimSpace(value))
	}
	h, _ := strconv.ParseInt(m[1], 10, 64)
	mins, _ := strconv.ParseInt(m[2], 10, 64)
	secs, _ := strconv.ParseInt(m[3], 10, 64)
	if mins > 59 || secs > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, strings.TrimSpace(value))
	}
	var frac int64
	if m[4] != "" {
		frac, _ = strconv.ParseInt(m[4], 10, 64)
		frac *= pow10[9-len(m[4])]
	}
	return ((h*60+mins)*60+secs)*1_000_000_000 + frac, nil
}
