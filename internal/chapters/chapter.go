package chapters

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode"

	"vfrchap/internal/trims"
)

// Chapter is one chapter atom. Names holds one display string per chapter
// language. End is zero for chapters that run to the end of the file.
type Chapter struct {
	Names             []string
	Start             int64
	End               int64
	UID               uint64
	Hidden            bool
	Enabled           bool
	SegmentUID        string
	SegmentEditionUID uint64
}

// Name returns the first display name.
func (c Chapter) Name() string {
	if len(c.Names) == 0 {
		return ""
	}
	return c.Names[0]
}

// Edition groups chapters. Names become edition titles in the tags file.
type Edition struct {
	UID      uint64
	Names    []string
	Default  bool
	Hidden   bool
	Ordered  bool
	Chapters []Chapter
}

// Document is everything a chapter file is rendered from. Languages and
// Countries are aligned by index with each chapter's Names. UIDBase seeds
// UID allocation; zero picks a random base when rendering Matroska.
type Document struct {
	Editions  []Edition
	Languages []string
	Countries []string
	UIDBase   uint64
}

// Chapters returns the chapters of the first edition, which is all that the
// text formats can express.
func (d Document) Chapters() []Chapter {
	if len(d.Editions) == 0 {
		return nil
	}
	return d.Editions[0].Chapters
}

// AutoName produces the fallback name of the 1-based chapter n.
type AutoName func(n int) string

// DefaultName is the AutoName used when none is configured.
func DefaultName(n int) string {
	return fmt.Sprintf("Chapter %02d", n)
}

// Names returns count chapter names. Lines of the UTF-8 file at path are
// used first, with a byte order mark stripped and trailing space trimmed;
// missing names come from auto. An empty path yields only generated names.
func Names(path string, count int, auto AutoName) ([]string, error) {
	if auto == nil {
		auto = DefaultName
	}
	names := make([]string, 0, count)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read chapter names: %w", err)
		}
		data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() && len(names) < count {
			names = append(names, strings.TrimRightFunc(scanner.Text(), unicode.IsSpace))
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read chapter names: %w", err)
		}
	}
	for i := len(names); i < count; i++ {
		names = append(names, auto(i+1))
	}
	return names, nil
}

// FromSpans builds one enabled chapter per resolved span, named by index.
func FromSpans(spans []trims.Span, names []string) []Chapter {
	out := make([]Chapter, len(spans))
	for i, s := range spans {
		ch := Chapter{Start: s.StartTs, Enabled: true}
		if !s.Open {
			ch.End = s.EndTs
		}
		if i < len(names) {
			ch.Names = []string{names[i]}
		}
		out[i] = ch
	}
	return out
}

// Single wraps chapters in one default edition.
func Single(chapters []Chapter, languages, countries []string, uidBase uint64) Document {
	return Document{
		Editions:  []Edition{{Default: true, Chapters: chapters}},
		Languages: languages,
		Countries: countries,
		UIDBase:   uidBase,
	}
}
