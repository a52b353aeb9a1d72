package trims

import (
	"errors"
	"slices"
	"testing"
)

func TestRetargetNTSCFilmToVideo(t *testing.T) {
	src := cfr(t, 30000, 1001)
	dst := cfr(t, 24000, 1001)
	res := resolve(t, src, []Trim{{0, 99}, {200, 299}}, WithOutput(dst))
	if !res.Retargeted {
		t.Fatal("expected retargeted output")
	}
	want := []Span{
		{Start: 0, End: 79, StartTs: 0, EndTs: 3_336_666_667},
		{Start: 80, End: 159, StartTs: 3_336_666_667, EndTs: 6_673_333_333},
	}
	if !slices.Equal(res.Out, want) {
		t.Fatalf("Out = %+v, want %+v", res.Out, want)
	}
	assertGapless(t, res.Out)
}

func TestRetargetUpsampleKeepsOpenEnd(t *testing.T) {
	res := resolve(t, cfr(t, 25, 1), []Trim{{0, 24}, {50, 0}}, WithOutput(cfr(t, 50, 1)))
	want := []Span{
		{Start: 0, End: 49, StartTs: 0, EndTs: 1000 * msNs},
		{Start: 50, StartTs: 1000 * msNs, Open: true},
	}
	if !slices.Equal(res.Out, want) {
		t.Fatalf("Out = %+v, want %+v", res.Out, want)
	}
}

func TestRetargetFinalEndIsInclusive(t *testing.T) {
	out, err := Retarget([]Span{{Start: 0, End: 10}}, cfr(t, 25, 1), cfr(t, 24, 1))
	if err != nil {
		t.Fatalf("Retarget returned error: %v", err)
	}
	// Frame 11 of 25 fps starts at 440ms; the last 24 fps frame starting
	// before it is 10 (416.7ms), so the inclusive end is 9.
	if out[0].Start != 0 || out[0].End != 9 {
		t.Fatalf("Out = %+v, want frames 0-9", out[0])
	}
	if out[0].EndTs != 416_666_667 {
		t.Fatalf("EndTs = %d, want 416666667", out[0].EndTs)
	}
}

func TestRetargetCollisionStepsBackPreviousBoundary(t *testing.T) {
	// A one-frame span at 50 fps is shorter than a 25 fps frame, so its end
	// lands on its own start frame.
	spans := []Span{{Start: 0, End: 3}, {Start: 4, End: 4}, {Start: 5, End: 9}}
	out, err := Retarget(spans, cfr(t, 50, 1), cfr(t, 25, 1))
	if err != nil {
		t.Fatalf("Retarget returned error: %v", err)
	}
	got := make([][2]int, len(out))
	for i, s := range out {
		got[i] = [2]int{s.Start, s.End}
	}
	want := [][2]int{{0, 1}, {1, 1}, {2, 4}}
	if !slices.Equal(got, want) {
		t.Fatalf("frames = %v, want %v", got, want)
	}
}

func TestRetargetUnderflow(t *testing.T) {
	spans := []Span{{Start: 0, End: 0}, {Start: 1, End: 1}}
	_, err := Retarget(spans, cfr(t, 100, 1), cfr(t, 25, 1))
	if !errors.Is(err, ErrRetargetUnderflow) {
		t.Fatalf("Retarget error = %v, want ErrRetargetUnderflow", err)
	}
}
