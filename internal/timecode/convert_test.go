package timecode

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"vfrchap/internal/testsupport"
)

func TestConvertRateMatchesSerialTable(t *testing.T) {
	frames := 3*convertChunk + 17
	out := filepath.Join(t.TempDir(), "tc.txt")
	var done atomic.Int64
	err := Convert(t.Context(), "30000/1001", frames, ConvertOptions{
		OutputPath: out,
		Jobs:       4,
		Progress:   func(n int) { done.Add(int64(n)) },
	})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if done.Load() != int64(frames) {
		t.Fatalf("progress reported %d frames, want %d", done.Load(), frames)
	}

	var want strings.Builder
	if err := WriteV2(&want, MaterializeCFR(MustRational(30000, 1001), frames), 0); err != nil {
		t.Fatalf("WriteV2: %v", err)
	}
	if got := testsupport.ReadFile(t, out); got != want.String() {
		t.Fatal("parallel conversion differs from the serial table")
	}
}

func TestConvertV1File(t *testing.T) {
	path := testsupport.WriteLines(t, "v1.txt", "# timecode format v1", "Assume 25", "2,3,50")
	out := filepath.Join(t.TempDir(), "tc.txt")
	if err := Convert(t.Context(), path, 5, ConvertOptions{OutputPath: out}); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	want := "# timecode format v2\n0.000000\n40.000000\n80.000000\n100.000000\n120.000000\n"
	if got := testsupport.ReadFile(t, out); got != want {
		t.Fatalf("v2 output = %q, want %q", got, want)
	}
}

func TestConvertContinuesFromFirst(t *testing.T) {
	out := testsupport.WriteLines(t, "tc.txt", "# timecode format v2", "0.000000", "40.000000")
	if err := Convert(t.Context(), "25", 4, ConvertOptions{OutputPath: out, First: 2}); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	want := "# timecode format v2\n0.000000\n40.000000\n80.000000\n120.000000\n"
	if got := testsupport.ReadFile(t, out); got != want {
		t.Fatalf("v2 output = %q, want %q", got, want)
	}
}

func TestConvertRejectsBadRange(t *testing.T) {
	for _, tc := range []struct {
		frames, first int
	}{{0, 0}, {10, -1}, {10, 10}} {
		if err := Convert(t.Context(), "25", tc.frames, ConvertOptions{First: tc.first}); err == nil {
			t.Fatalf("Convert(frames=%d, first=%d) should fail", tc.frames, tc.first)
		}
	}
}

func TestConvertCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	out := filepath.Join(t.TempDir(), "tc.txt")
	err := Convert(ctx, "25", 10*convertChunk, ConvertOptions{OutputPath: out, Jobs: 2})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Convert error = %v, want context.Canceled", err)
	}
	testsupport.AssertMissing(t, out)
}
