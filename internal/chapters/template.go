package chapters

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/pelletier/go-toml/v2"

	"vfrchap/internal/language"
	"vfrchap/internal/timecode"
	"vfrchap/internal/trims"
)

var (
	// ErrTemplate reports a structurally invalid template.
	ErrTemplate = errors.New("invalid chapter template")
	// ErrChapterTime reports a template chapter with neither a trim nor an
	// explicit start.
	ErrChapterTime = errors.New("chapter has no start time")
	// ErrTrimReference reports a chapter trim index outside the resolved trims.
	ErrTrimReference = errors.New("chapter references a missing trim")
)

// Template is a TOML chapter template.
//
//	[info]
//	languages = ["eng", "jpn"]
//	countries = ["us", "jp"]
//	uid = 1234
//	create_qpfile = true
//
//	[[editions]]
//	names = ["Movie", "映画"]
//	default = true
//
//	[[editions.chapters]]
//	names = ["Opening", "オープニング"]
//	trim = 1
type Template struct {
	Info     TemplateInfo      `toml:"info"`
	Editions []TemplateEdition `toml:"editions"`
}

// TemplateInfo holds document-wide settings.
type TemplateInfo struct {
	Languages    []string `toml:"languages"`
	Countries    []string `toml:"countries"`
	UID          uint64   `toml:"uid"`
	CreateQPFile bool     `toml:"create_qpfile"`
}

// TemplateEdition describes one edition.
type TemplateEdition struct {
	Names    []string          `toml:"names"`
	Default  bool              `toml:"default"`
	Hidden   bool              `toml:"hidden"`
	Ordered  bool              `toml:"ordered"`
	Chapters []TemplateChapter `toml:"chapters"`
}

// TemplateChapter describes one chapter. Trim is a 1-based index into the
// resolved trims; Start and End are HH:MM:SS[.fraction] strings and take
// precedence over trim-derived times.
type TemplateChapter struct {
	Names             []string `toml:"names"`
	Trim              int      `toml:"trim"`
	Start             string   `toml:"start"`
	End               string   `toml:"end"`
	Hidden            bool     `toml:"hidden"`
	Enabled           *bool    `toml:"enabled"`
	SegmentUID        string   `toml:"segment_uid"`
	SegmentEditionUID uint64   `toml:"segment_edition_uid"`
}

// LoadTemplate reads and decodes a template file. Unknown keys are errors.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return ParseTemplate(data)
}

// ParseTemplate decodes template TOML and normalizes its locale lists.
func ParseTemplate(data []byte) (*Template, error) {
	var tpl Template
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&tpl); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", ErrTemplate, strict.String())
		}
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	if len(tpl.Editions) == 0 {
		return nil, fmt.Errorf("%w: no editions", ErrTemplate)
	}
	langs, err := language.NormalizeList(tpl.Info.Languages)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	countries, err := language.NormalizeCountries(tpl.Info.Countries)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	tpl.Info.Languages, tpl.Info.Countries = langs, countries
	return &tpl, nil
}

// Built is a template applied to resolved trims.
type Built struct {
	Document Document
	// Keyframes are the first output frames of the referenced trims, sorted
	// and unique. They are set only when the template asks for a qpfile.
	Keyframes []int
}

// Build applies the template to spans. uid overrides the template's base
// UID when non-zero; fallback languages apply when the template has none.
func (t *Template) Build(spans []trims.Span, uid uint64, fallback []string) (Built, error) {
	languages := t.Info.Languages
	if len(languages) == 0 {
		languages = fallback
	}
	doc := Document{Languages: languages, Countries: t.Info.Countries, UIDBase: t.Info.UID}
	if uid != 0 {
		doc.UIDBase = uid
	}
	var keyframes []int
	for ei, te := range t.Editions {
		if len(te.Chapters) == 0 {
			return Built{}, fmt.Errorf("%w: edition %d has no chapters", ErrTemplate, ei+1)
		}
		ed := Edition{Names: te.Names, Default: te.Default, Hidden: te.Hidden, Ordered: te.Ordered}
		for ci, tc := range te.Chapters {
			ch, err := tc.chapter(spans)
			if err != nil {
				return Built{}, fmt.Errorf("edition %d chapter %d: %w", ei+1, ci+1, err)
			}
			if tc.Trim > 0 {
				keyframes = append(keyframes, spans[tc.Trim-1].Start)
			}
			ed.Chapters = append(ed.Chapters, ch)
		}
		doc.Editions = append(doc.Editions, ed)
	}
	if !slices.ContainsFunc(doc.Editions, func(e Edition) bool { return e.Default }) {
		doc.Editions[0].Default = true
	}
	out := Built{Document: doc}
	if t.Info.CreateQPFile {
		slices.Sort(keyframes)
		out.Keyframes = slices.Compact(keyframes)
	}
	return out, nil
}

func (tc TemplateChapter) chapter(spans []trims.Span) (Chapter, error) {
	ch := Chapter{
		Names:             tc.Names,
		Hidden:            tc.Hidden,
		Enabled:           tc.Enabled == nil || *tc.Enabled,
		SegmentUID:        tc.SegmentUID,
		SegmentEditionUID: tc.SegmentEditionUID,
	}
	haveStart := false
	if tc.Trim != 0 {
		if tc.Trim < 0 || tc.Trim > len(spans) {
			return Chapter{}, fmt.Errorf("%w: trim %d of %d", ErrTrimReference, tc.Trim, len(spans))
		}
		span := spans[tc.Trim-1]
		ch.Start, haveStart = span.StartTs, true
		if !span.Open {
			ch.End = span.EndTs
		}
	}
	if tc.Start != "" {
		start, err := timecode.ParseTime(tc.Start)
		if err != nil {
			return Chapter{}, fmt.Errorf("start: %w", err)
		}
		ch.Start, haveStart = start, true
	}
	if tc.End != "" {
		end, err := timecode.ParseTime(tc.End)
		if err != nil {
			return Chapter{}, fmt.Errorf("end: %w", err)
		}
		ch.End = end
	}
	if !haveStart {
		return Chapter{}, ErrChapterTime
	}
	if ch.End != 0 && ch.End < ch.Start {
		return Chapter{}, fmt.Errorf("%w: end %s precedes start %s", ErrTemplate,
			timecode.FormatTime(ch.End, timecode.Milli), timecode.FormatTime(ch.Start, timecode.Milli))
	}
	return ch, nil
}
