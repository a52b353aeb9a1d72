package chapters

import (
	"path/filepath"
	"slices"
	"testing"

	"vfrchap/internal/testsupport"
	"vfrchap/internal/trims"
)

func TestNamesFromFile(t *testing.T) {
	path := testsupport.WriteFile(t, filepath.Join(t.TempDir(), "names.txt"), "\ufeffIntro  \r\nPart A\n")
	got, err := Names(path, 4, nil)
	if err != nil {
		t.Fatalf("Names returned error: %v", err)
	}
	want := []string{"Intro", "Part A", "Chapter 03", "Chapter 04"}
	if !slices.Equal(got, want) {
		t.Fatalf("Names = %q, want %q", got, want)
	}
}

func TestNamesTruncatesExtraLines(t *testing.T) {
	path := testsupport.WriteLines(t, "names.txt", "One", "Two", "Three")
	got, err := Names(path, 2, nil)
	if err != nil {
		t.Fatalf("Names returned error: %v", err)
	}
	if !slices.Equal(got, []string{"One", "Two"}) {
		t.Fatalf("Names = %q", got)
	}
}

func TestNamesGenerated(t *testing.T) {
	got, err := Names("", 2, func(n int) string { return "Part " + string(rune('0'+n)) })
	if err != nil {
		t.Fatalf("Names returned error: %v", err)
	}
	if !slices.Equal(got, []string{"Part 1", "Part 2"}) {
		t.Fatalf("Names = %q", got)
	}
}

func TestNamesMissingFile(t *testing.T) {
	if _, err := Names(filepath.Join(t.TempDir(), "missing.txt"), 1, nil); err == nil {
		t.Fatal("expected error for missing names file")
	}
}

func TestFromSpans(t *testing.T) {
	spans := []trims.Span{
		{Start: 0, End: 49, StartTs: 0, EndTs: 2_000_000_000},
		{Start: 50, StartTs: 2_000_000_000, Open: true},
	}
	got := FromSpans(spans, []string{"A", "B"})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].End != 2_000_000_000 || got[0].Name() != "A" || !got[0].Enabled {
		t.Fatalf("first chapter = %+v", got[0])
	}
	if got[1].End != 0 || got[1].Start != 2_000_000_000 || got[1].Name() != "B" {
		t.Fatalf("open chapter = %+v", got[1])
	}
}
