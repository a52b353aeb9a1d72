package timecode

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestCFRTimestamp(t *testing.T) {
	src, err := NewCFR(MustRational(24000, 1001))
	if err != nil {
		t.Fatalf("NewCFR returned error: %v", err)
	}
	tests := []struct {
		frame int
		scale Scale
		want  int64
	}{
		{0, Nanoseconds, 0},
		{1, Nanoseconds, 41_708_333},
		{1000, Nanoseconds, 41_708_333_333},
		{24000, Nanoseconds, 1_001_000_000_000},
		{1, Microseconds, 41_708},
		{1, Milliseconds, 42},
		{24000, Seconds, 1001},
	}
	for _, tt := range tests {
		got, err := src.Timestamp(tt.frame, tt.scale)
		if err != nil {
			t.Errorf("Timestamp(%d) returned error: %v", tt.frame, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Timestamp(%d, %d) = %d, want %d", tt.frame, tt.scale, got, tt.want)
		}
	}
}

func TestCFRRoundTrip(t *testing.T) {
	for _, rate := range []Rational{MustRational(24000, 1001), MustRational(25, 1), MustRational(60000, 1001)} {
		src, err := NewCFR(rate)
		if err != nil {
			t.Fatalf("NewCFR(%v) returned error: %v", rate, err)
		}
		for _, frame := range []int{0, 1, 1000, 250_000 - 1} {
			ts, err := TimestampNs(src, frame)
			if err != nil {
				t.Fatalf("TimestampNs(%d) returned error: %v", frame, err)
			}
			got, err := src.FrameAt(ts)
			if err != nil {
				t.Fatalf("FrameAt(%d) returned error: %v", ts, err)
			}
			if got != frame {
				t.Errorf("%v: FrameAt(Timestamp(%d)) = %d", rate, frame, got)
			}
		}
	}
}

func TestCFRRejectsNegativeFrame(t *testing.T) {
	src, _ := NewCFR(MustRational(25, 1))
	if _, err := src.Timestamp(-1, Nanoseconds); !errors.Is(err, ErrNegativeFrame) {
		t.Fatalf("Timestamp(-1) error = %v, want ErrNegativeFrame", err)
	}
}

func TestNewCFRRejectsZeroRate(t *testing.T) {
	if _, err := NewCFR(Rational{}); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("NewCFR(0) error = %v, want ErrInvalidRate", err)
	}
}

func ms(values ...int64) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = v * 1_000_000
	}
	return out
}

func TestVFRTimestampInsideAndPastTable(t *testing.T) {
	table := ms(0, 40, 80, 120, 160, 200, 240, 280, 320, 360)
	src, err := NewVFR(table, nil)
	if err != nil {
		t.Fatalf("NewVFR returned error: %v", err)
	}

	last, err := src.Timestamp(len(table)-1, Nanoseconds)
	if err != nil {
		t.Fatalf("Timestamp(last) returned error: %v", err)
	}
	if last != 360_000_000 {
		t.Fatalf("Timestamp(last) = %d, want stored value", last)
	}

	next, err := src.Timestamp(len(table), Milliseconds)
	if err != nil {
		t.Fatalf("Timestamp(len) returned error: %v", err)
	}
	if next != 400 {
		t.Fatalf("Timestamp(len) = %dms, want 400", next)
	}

	rate, err := src.ExtrapolatedRate()
	if err != nil {
		t.Fatalf("ExtrapolatedRate returned error: %v", err)
	}
	if rate != MustRational(25, 1) {
		t.Fatalf("ExtrapolatedRate = %v, want 25", rate)
	}
	if src.Len() != len(table) {
		t.Fatalf("lazy extrapolation grew the table to %d", src.Len())
	}
}

func TestVFRExtendKeepsStoredValues(t *testing.T) {
	table := ms(0, 40, 80)
	src, err := NewVFR(table, nil)
	if err != nil {
		t.Fatalf("NewVFR returned error: %v", err)
	}
	if err := src.Extend(6); err != nil {
		t.Fatalf("Extend returned error: %v", err)
	}
	want := ms(0, 40, 80, 120, 160, 200)
	got := src.Table()
	if len(got) != len(want) {
		t.Fatalf("table length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("table[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if err := src.Extend(2); err != nil {
		t.Fatalf("Extend(shorter) returned error: %v", err)
	}
	if src.Len() != 6 {
		t.Fatalf("table was shortened to %d", src.Len())
	}
}

func TestVFRExtrapolationNeedsTwoSamples(t *testing.T) {
	src, err := NewVFR(ms(0), nil)
	if err != nil {
		t.Fatalf("NewVFR returned error: %v", err)
	}
	if _, err := src.Timestamp(0, Nanoseconds); err != nil {
		t.Fatalf("Timestamp(0) returned error: %v", err)
	}
	if _, err := src.Timestamp(1, Nanoseconds); !errors.Is(err, ErrExtrapolation) {
		t.Fatalf("Timestamp(1) error = %v, want ErrExtrapolation", err)
	}
	if err := src.Extend(5); !errors.Is(err, ErrExtrapolation) {
		t.Fatalf("Extend error = %v, want ErrExtrapolation", err)
	}
}

func TestVFRFrameAt(t *testing.T) {
	src, err := NewVFR(ms(0, 40, 80), nil)
	if err != nil {
		t.Fatalf("NewVFR returned error: %v", err)
	}
	tests := []struct {
		ts   int64
		want int
	}{
		{0, 0},
		{40_000_000, 1},
		{60_000_000, 1},
		{61_000_000, 2},
		{80_000_000, 2},
		{200_000_000, 5},
	}
	for _, tt := range tests {
		got, err := src.FrameAt(tt.ts)
		if err != nil {
			t.Errorf("FrameAt(%d) returned error: %v", tt.ts, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FrameAt(%d) = %d, want %d", tt.ts, got, tt.want)
		}
	}
}

func TestNewVFRRejectsDecreasingTable(t *testing.T) {
	if _, err := NewVFR(ms(0, 40, 30), nil); !errors.Is(err, ErrNotMonotonic) {
		t.Fatalf("NewVFR error = %v, want ErrNotMonotonic", err)
	}
}

func TestSameTimebase(t *testing.T) {
	a, _ := NewCFR(MustRational(24000, 1001))
	b, _ := NewCFR(MustRational(48000, 2002))
	c, _ := NewCFR(MustRational(25, 1))
	v, _ := NewVFR(ms(0, 40), nil)
	if !SameTimebase(a, b) {
		t.Fatal("expected equal CFR rates to share a timebase")
	}
	if SameTimebase(a, c) {
		t.Fatal("expected different CFR rates to differ")
	}
	if SameTimebase(v, v) {
		t.Fatal("VFR sources never report a shared timebase")
	}
	if a.Kind() != KindCFR || v.Kind() != KindVFR {
		t.Fatal("unexpected kinds")
	}
}

func TestVFRExtrapolationWarnsOncePastTable(t *testing.T) {
	var buf bytes.Buffer
	src, err := NewVFR(ms(0, 40, 80), slog.New(slog.NewJSONHandler(&buf, nil)))
	if err != nil {
		t.Fatalf("NewVFR returned error: %v", err)
	}

	for frame := range 3 {
		if _, err := src.Timestamp(frame, Milliseconds); err != nil {
			t.Fatalf("Timestamp(%d) returned error: %v", frame, err)
		}
	}
	if _, err := src.FrameAt(80_000_000); err != nil {
		t.Fatalf("FrameAt returned error: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("queries inside the table logged: %s", buf.String())
	}

	for _, frame := range []int{3, 10} {
		if _, err := src.Timestamp(frame, Milliseconds); err != nil {
			t.Fatalf("Timestamp(%d) returned error: %v", frame, err)
		}
	}
	if _, err := src.FrameAt(400_000_000); err != nil {
		t.Fatalf("FrameAt past table returned error: %v", err)
	}

	var warnings int
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("decode log line: %v", err)
		}
		if entry["level"] != "WARN" || entry["event_type"] != "timecode_extrapolated" {
			t.Fatalf("unexpected log entry: %v", entry)
		}
		if entry["frames"] != float64(3) {
			t.Fatalf("frames = %v, want 3", entry["frames"])
		}
		warnings++
	}
	if warnings != 1 {
		t.Fatalf("got %d extrapolation warnings, want 1", warnings)
	}
}
