package chapters

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vfrchap/internal/testsupport"
)

func TestWriteMKVSingleEdition(t *testing.T) {
	doc := Single(twoChapters()[:1], []string{"eng"}, nil, 7)
	if err := assignUIDs(&doc, doc.UIDBase); err != nil {
		t.Fatalf("assignUIDs returned error: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteMKV(&buf, doc); err != nil {
		t.Fatalf("WriteMKV returned error: %v", err)
	}
	want := `<?xml version="1.0" encoding="UTF-8"?>
<!-- <!DOCTYPE Chapters SYSTEM "matroskachapters.dtd"> -->
<Chapters>
  <EditionEntry>
    <EditionFlagHidden>0</EditionFlagHidden>
    <EditionFlagDefault>1</EditionFlagDefault>
    <EditionFlagOrdered>0</EditionFlagOrdered>
    <EditionUID>700</EditionUID>
    <ChapterAtom>
      <ChapterUID>701</ChapterUID>
      <ChapterTimeStart>00:00:00.000000000</ChapterTimeStart>
      <ChapterTimeEnd>00:00:02.000000000</ChapterTimeEnd>
      <ChapterFlagHidden>0</ChapterFlagHidden>
      <ChapterFlagEnabled>1</ChapterFlagEnabled>
      <ChapterDisplay>
        <ChapterString>A</ChapterString>
        <ChapterLanguage>eng</ChapterLanguage>
      </ChapterDisplay>
    </ChapterAtom>
  </EditionEntry>
</Chapters>
`
	if buf.String() != want {
		t.Fatalf("WriteMKV =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteMKVOmitsOpenEndAndAddsCountries(t *testing.T) {
	doc := Single([]Chapter{{Names: []string{"Open", "Offen"}, Start: 1_000_000_000, Enabled: true}},
		[]string{"eng", "ger"}, []string{"us", ""}, 1)
	if err := assignUIDs(&doc, 1); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteMKV(&buf, doc); err != nil {
		t.Fatalf("WriteMKV returned error: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "ChapterTimeEnd") {
		t.Fatalf("open chapter must not carry an end:\n%s", out)
	}
	for _, want := range []string{
		"<ChapterLanguage>eng</ChapterLanguage>\n        <ChapterCountry>us</ChapterCountry>",
		"<ChapterString>Offen</ChapterString>\n        <ChapterLanguage>ger</ChapterLanguage>\n      </ChapterDisplay>",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in\n%s", want, out)
		}
	}
}

func TestWriteMKVSegmentsOnlyInOrderedEditions(t *testing.T) {
	ch := Chapter{Names: []string{"Linked"}, Enabled: true, SegmentUID: "0a0b", SegmentEditionUID: 42}
	doc := Document{
		Editions: []Edition{
			{Default: true, Chapters: []Chapter{ch}},
			{Ordered: true, Chapters: []Chapter{ch}},
		},
		Languages: []string{"eng"},
	}
	if err := assignUIDs(&doc, 3); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteMKV(&buf, doc); err != nil {
		t.Fatalf("WriteMKV returned error: %v", err)
	}
	out := buf.String()
	if strings.Count(out, `<ChapterSegmentUID format="hex">0a0b</ChapterSegmentUID>`) != 1 {
		t.Fatalf("expected one segment uid:\n%s", out)
	}
	if strings.Count(out, "<ChapterSegmentEditionUID>42</ChapterSegmentEditionUID>") != 1 {
		t.Fatalf("expected one segment edition uid:\n%s", out)
	}
	for _, uid := range []string{"<EditionUID>300</EditionUID>", "<ChapterUID>301</ChapterUID>", "<EditionUID>302</EditionUID>", "<ChapterUID>303</ChapterUID>"} {
		if !strings.Contains(out, uid) {
			t.Fatalf("expected %s in\n%s", uid, out)
		}
	}
}

func TestWriteTags(t *testing.T) {
	doc := Document{
		Editions: []Edition{
			{UID: 500, Names: []string{"Theatrical", "Kino"}},
			{UID: 503, Names: []string{"Extended"}},
		},
		Languages: []string{"eng", "ger"},
	}
	var buf bytes.Buffer
	if err := WriteTags(&buf, doc); err != nil {
		t.Fatalf("WriteTags returned error: %v", err)
	}
	want := `<?xml version="1.0" encoding="UTF-8"?>
<!-- <!DOCTYPE Tags SYSTEM "matroskatags.dtd"> -->
<Tags>
  <Tag>
    <Targets>
      <EditionUID>500</EditionUID>
      <TargetTypeValue>50</TargetTypeValue>
    </Targets>
    <Simple>
      <Name>TITLE</Name>
      <String>Theatrical</String>
      <TagLanguage>eng</TagLanguage>
      <DefaultLanguage>1</DefaultLanguage>
    </Simple>
    <Simple>
      <Name>TITLE</Name>
      <String>Kino</String>
      <TagLanguage>ger</TagLanguage>
      <DefaultLanguage>0</DefaultLanguage>
    </Simple>
  </Tag>
  <Tag>
    <Targets>
      <EditionUID>503</EditionUID>
      <TargetTypeValue>50</TargetTypeValue>
    </Targets>
    <Simple>
      <Name>TITLE</Name>
      <String>Extended</String>
      <TagLanguage>eng</TagLanguage>
      <DefaultLanguage>1</DefaultLanguage>
    </Simple>
  </Tag>
</Tags>
`
	if buf.String() != want {
		t.Fatalf("WriteTags =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriterRenderKeepsCallerDocument(t *testing.T) {
	doc := Single(twoChapters(), []string{"eng"}, nil, 0)
	w := Writer{Format: MKV}
	rendered, err := w.Render(doc)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if rendered.UIDBase == 0 {
		t.Fatal("expected a generated uid base")
	}
	if doc.Editions[0].UID != 0 || doc.Editions[0].Chapters[0].UID != 0 {
		t.Fatal("Render must not number the caller's document")
	}
	if rendered.Tags != nil {
		t.Fatal("single edition must not produce tags")
	}
}

func TestWriterRenderEmpty(t *testing.T) {
	laterEmpty := Single(twoChapters(), []string{"eng"}, nil, 7)
	laterEmpty.Editions = append(laterEmpty.Editions, Edition{})
	tests := []struct {
		name   string
		format Format
		doc    Document
	}{
		{"no editions", OGM, Document{}},
		{"empty first edition", MKV, Document{Editions: []Edition{{}}}},
		{"empty later edition", MKV, laterEmpty},
		{"empty later edition in text", X264, laterEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := (Writer{Format: tt.format}).Render(tt.doc); !errors.Is(err, ErrNoChapters) {
				t.Fatalf("Render error = %v, want ErrNoChapters", err)
			}
		})
	}
}

func TestWriterWriteFilesWithTags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movie.xml")
	doc := Document{
		Editions: []Edition{
			{Names: []string{"One"}, Default: true, Chapters: twoChapters()},
			{Names: []string{"Two"}, Chapters: twoChapters()[:1]},
		},
		Languages: []string{"eng"},
		UIDBase:   9,
	}
	written, err := NewWriter(path, nil).WriteFiles(path, doc)
	if err != nil {
		t.Fatalf("WriteFiles returned error: %v", err)
	}
	if len(written) != 2 || written[1] != filepath.Join(dir, "movietags.xml") {
		t.Fatalf("written = %v", written)
	}
	tags := testsupport.ReadFile(t, written[1])
	if !strings.Contains(tags, "<EditionUID>903</EditionUID>") {
		t.Fatalf("second edition uid missing from tags:\n%s", tags)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("chapters not written: %v", err)
	}
}

func TestWriterWriteFilesText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie.txt")
	if _, err := NewWriter(path, nil).WriteFiles(path, Single(twoChapters(), nil, nil, 0)); err != nil {
		t.Fatalf("WriteFiles returned error: %v", err)
	}
	if got := testsupport.ReadFile(t, path); !strings.HasPrefix(got, "CHAPTER01=00:00:00.000000000\n") {
		t.Fatalf("unexpected OGM content %q", got)
	}
}
