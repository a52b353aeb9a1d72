package timecode

import (
	"errors"
	"testing"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		ns   int64
		p    Precision
		want string
	}{
		{0, Nano, "00:00:00.000000000"},
		{2_000_000_000, Nano, "00:00:02.000000000"},
		{41_708_333, Nano, "00:00:00.041708333"},
		{3_723_004_005_006, Nano, "01:02:03.004005006"},
		{41_708_333, Milli, "00:00:00.042"},
		{59_999_500_000, Milli, "00:01:00.000"},
		{3_599_999_600_000, Milli, "01:00:00.000"},
		{1_500_000, Milli, "00:00:00.002"},
		{2_500_000, Milli, "00:00:00.002"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.ns, tt.p); got != tt.want {
			t.Errorf("FormatTime(%d, %d) = %q, want %q", tt.ns, tt.p, got, tt.want)
		}
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"00:00:00", 0},
		{"00:00:02.000000000", 2_000_000_000},
		{"01:02:03.004", 3_723_004_000_000},
		{"0:1:2.5", 62_500_000_000},
	}
	for _, tt := range tests {
		got, err := ParseTime(tt.input)
		if err != nil {
			t.Errorf("ParseTime(%q) returned error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTime(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
	for _, bad := range []string{"", "1:2", "00:61:00", "00:00:00.1234567890", "aa:bb:cc"} {
		if _, err := ParseTime(bad); !errors.Is(err, ErrInvalidTime) {
			t.Errorf("ParseTime(%q) error = %v, want ErrInvalidTime", bad, err)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, ns := range []int64{0, 1, 41_708_333, 86_399_999_999_999} {
		got, err := ParseTime(FormatTime(ns, Nano))
		if err != nil {
			t.Fatalf("ParseTime returned error: %v", err)
		}
		if got != ns {
			t.Fatalf("round trip of %d gave %d", ns, got)
		}
	}
}
