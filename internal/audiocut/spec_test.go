package audiocut

import (
	"errors"
	"testing"
)

const sec = int64(1_000_000_000)

func TestPartsSpec(t *testing.T) {
	tests := []struct {
		name          string
		cuts          []int64
		includesStart bool
		want          string
	}{
		{
			name:          "starts at zero",
			cuts:          []int64{1 * sec, 2 * sec, 3 * sec},
			includesStart: true,
			want:          "parts:-00:00:01.000000000,+00:00:02.000000000-00:00:03.000000000",
		},
		{
			name: "single open range",
			cuts: []int64{1 * sec},
			want: "parts:00:00:01.000000000-",
		},
		{
			name: "closed ranges",
			cuts: []int64{1 * sec, 2 * sec, 5 * sec, 8 * sec},
			want: "parts:00:00:01.000000000-00:00:02.000000000,+00:00:05.000000000-00:00:08.000000000",
		},
		{
			name: "trailing open range",
			cuts: []int64{1 * sec, 2 * sec, 3 * sec},
			want: "parts:00:00:01.000000000-00:00:02.000000000,+00:00:03.000000000-",
		},
		{
			name:          "start then open range",
			cuts:          []int64{1 * sec, 4 * sec},
			includesStart: true,
			want:          "parts:-00:00:01.000000000,+00:00:04.000000000-",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PartsSpec(tt.cuts, tt.includesStart)
			if err != nil {
				t.Fatalf("PartsSpec returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("PartsSpec = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpecsRequireCuts(t *testing.T) {
	if _, err := PartsSpec(nil, true); !errors.Is(err, ErrNoCuts) {
		t.Fatalf("PartsSpec error = %v, want ErrNoCuts", err)
	}
	if _, err := TimecodesSpec(nil); !errors.Is(err, ErrNoCuts) {
		t.Fatalf("TimecodesSpec error = %v, want ErrNoCuts", err)
	}
}

func TestTimecodesSpec(t *testing.T) {
	got, err := TimecodesSpec([]int64{1 * sec, 61*sec + 500_000_000})
	if err != nil {
		t.Fatal(err)
	}
	if want := "timecodes:00:00:01.000000000,00:01:01.500000000"; got != want {
		t.Fatalf("TimecodesSpec = %q, want %q", got, want)
	}
}

func TestDelayFromName(t *testing.T) {
	tests := []struct {
		path  string
		delay int
		ok    bool
	}{
		{"/x/movie T80 2_0ch 192Kbps DELAY -42ms.ac3", -42, true},
		{"movie DELAY 120ms.aac", 120, true},
		{"/DELAY 5/movie.ac3", 0, false},
		{"movie.ac3", 0, false},
	}
	for _, tt := range tests {
		delay, ok := DelayFromName(tt.path)
		if delay != tt.delay || ok != tt.ok {
			t.Errorf("DelayFromName(%q) = %d, %v; want %d, %v", tt.path, delay, ok, tt.delay, tt.ok)
		}
	}
}

func TestDefaultOutput(t *testing.T) {
	if got := DefaultOutput("/media/movie.ac3"); got != "/media/movie.cut.mka" {
		t.Fatalf("DefaultOutput = %q", got)
	}
}
