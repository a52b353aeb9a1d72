package timecode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNotMonotonic reports a v2 table whose timestamps decrease.
var ErrNotMonotonic = errors.New("timecodes are not non-decreasing")

const (
	headerV1 = "# timecode format v1"
	headerV2 = "# timecode format v2"
)

// ParseV2 reads the millisecond lines that follow the v2 header into a
// nanosecond table. Values are parsed as exact decimals and rounded half to
// even at six fractional digits.
func ParseV2(lines []string) ([]int64, error) {
	table := make([]int64, 0, len(lines))
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ns, err := parseMillis(line)
		if err != nil {
			return nil, fmt.Errorf("v2 line %d: %w", i+2, err)
		}
		if n := len(table); n > 0 && ns < table[n-1] {
			return nil, fmt.Errorf("%w: line %d (%s) is earlier than the previous frame", ErrNotMonotonic, i+2, line)
		}
		table = append(table, ns)
	}
	return table, nil
}

// WriteV2 writes table[first:] one millisecond value per line with six
// decimals. The header is written only when first is 0; later offsets
// continue an existing file.
func WriteV2(w io.Writer, table []int64, first int) error {
	if first < 0 {
		first = 0
	}
	bw := bufio.NewWriter(w)
	if first == 0 {
		if _, err := bw.WriteString(headerV2 + "\n"); err != nil {
			return err
		}
	}
	for i := first; i < len(table); i++ {
		if _, err := bw.WriteString(formatMillis(table[i])); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// parseMillis converts a decimal millisecond string to nanoseconds without
// floating point.
func parseMillis(value string) (int64, error) {
	neg := strings.HasPrefix(value, "-")
	digits := strings.TrimPrefix(strings.TrimPrefix(value, "-"), "+")
	intPart, fracPart, _ := strings.Cut(digits, ".")
	if intPart == "" && fracPart == "" {
		return 0, fmt.Errorf("timestamp %q is empty", value)
	}
	if intPart == "" {
		intPart = "0"
	}
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("timestamp %q: %w", value, err)
	}
	for _, r := range fracPart {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("timestamp %q: invalid fraction", value)
		}
	}
	var frac int64
	switch {
	case len(fracPart) <= 6:
		if fracPart != "" {
			frac, _ = strconv.ParseInt(fracPart, 10, 64)
			frac *= pow10[6-len(fracPart)]
		}
	default:
		kept, _ := strconv.ParseInt(fracPart[:6], 10, 64)
		frac = kept + roundDigits(fracPart[6:], kept)
	}
	ns := whole*1_000_000 + frac
	if neg {
		ns = -ns
	}
	return ns, nil
}

// roundDigits decides whether dropped decimal digits round the kept value up,
// ties to even.
func roundDigits(dropped string, kept int64) int64 {
	first := dropped[0]
	rest := strings.TrimRight(dropped[1:], "0")
	switch {
	case first > '5', first == '5' && rest != "":
		return 1
	case first == '5' && kept%2 == 1:
		return 1
	default:
		return 0
	}
}

func formatMillis(ns int64) string {
	sign := ""
	if ns < 0 {
		sign = "-"
		ns = -ns
	}
	return fmt.Sprintf("%s%d.%06d", sign, ns/1_000_000, ns%1_000_000)
}
