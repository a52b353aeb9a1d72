package chapters

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"vfrchap/internal/language"
	"vfrchap/internal/timecode"
)

const (
	xmlHeader       = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
	chaptersDoctype = `<!-- <!DOCTYPE Chapters SYSTEM "matroskachapters.dtd"> -->` + "\n"
	tagsDoctype     = `<!-- <!DOCTYPE Tags SYSTEM "matroskatags.dtd"> -->` + "\n"
	editionTarget   = 50
)

type xmlChapters struct {
	XMLName  xml.Name     `xml:"Chapters"`
	Editions []xmlEdition `xml:"EditionEntry"`
}

type xmlEdition struct {
	Hidden  int       `xml:"EditionFlagHidden"`
	Default int       `xml:"EditionFlagDefault"`
	Ordered int       `xml:"EditionFlagOrdered"`
	UID     uint64    `xml:"EditionUID"`
	Atoms   []xmlAtom `xml:"ChapterAtom"`
}

type xmlAtom struct {
	UID               uint64         `xml:"ChapterUID"`
	Start             string         `xml:"ChapterTimeStart"`
	End               string         `xml:"ChapterTimeEnd,omitempty"`
	Hidden            int            `xml:"ChapterFlagHidden"`
	Enabled           int            `xml:"ChapterFlagEnabled"`
	SegmentUID        *xmlSegmentUID `xml:"ChapterSegmentUID,omitempty"`
	SegmentEditionUID uint64         `xml:"ChapterSegmentEditionUID,omitempty"`
	Displays          []xmlDisplay   `xml:"ChapterDisplay"`
}

type xmlSegmentUID struct {
	Format string `xml:"format,attr"`
	Value  string `xml:",chardata"`
}

type xmlDisplay struct {
	String   string `xml:"ChapterString"`
	Language string `xml:"ChapterLanguage"`
	Country  string `xml:"ChapterCountry,omitempty"`
}

type xmlTags struct {
	XMLName xml.Name `xml:"Tags"`
	Tags    []xmlTag `xml:"Tag"`
}

type xmlTag struct {
	Targets xmlTargets  `xml:"Targets"`
	Simple  []xmlSimple `xml:"Simple"`
}

type xmlTargets struct {
	EditionUID      uint64 `xml:"EditionUID"`
	TargetTypeValue int    `xml:"TargetTypeValue"`
}

type xmlSimple struct {
	Name            string `xml:"Name"`
	String          string `xml:"String"`
	Language        string `xml:"TagLanguage"`
	DefaultLanguage int    `xml:"DefaultLanguage"`
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// WriteMKV renders doc as Matroska chapter XML. Every edition and chapter in
// doc must already carry its UID.
func WriteMKV(w io.Writer, doc Document) error {
	out := xmlChapters{Editions: make([]xmlEdition, 0, len(doc.Editions))}
	for _, ed := range doc.Editions {
		xe := xmlEdition{
			Hidden:  flag(ed.Hidden),
			Default: flag(ed.Default),
			Ordered: flag(ed.Ordered),
			UID:     ed.UID,
			Atoms:   make([]xmlAtom, 0, len(ed.Chapters)),
		}
		for _, ch := range ed.Chapters {
			atom := xmlAtom{
				UID:      ch.UID,
				Start:    timecode.FormatTime(ch.Start, timecode.Nano),
				Hidden:   flag(ch.Hidden),
				Enabled:  flag(ch.Enabled),
				Displays: displays(ch.Names, doc.Languages, doc.Countries),
			}
			if ch.End != 0 {
				atom.End = timecode.FormatTime(ch.End, timecode.Nano)
			}
			if ed.Ordered {
				if ch.SegmentUID != "" {
					atom.SegmentUID = &xmlSegmentUID{Format: "hex", Value: ch.SegmentUID}
				}
				atom.SegmentEditionUID = ch.SegmentEditionUID
			}
			xe.Atoms = append(xe.Atoms, atom)
		}
		out.Editions = append(out.Editions, xe)
	}
	return encodeXML(w, chaptersDoctype, out)
}

// WriteTags renders the companion tags document that titles each edition in
// every chapter language.
func WriteTags(w io.Writer, doc Document) error {
	out := xmlTags{Tags: make([]xmlTag, 0, len(doc.Editions))}
	for _, ed := range doc.Editions {
		tag := xmlTag{Targets: xmlTargets{EditionUID: ed.UID, TargetTypeValue: editionTarget}}
		for i, name := range ed.Names {
			tag.Simple = append(tag.Simple, xmlSimple{
				Name:            "TITLE",
				String:          name,
				Language:        languageAt(doc.Languages, i),
				DefaultLanguage: flag(i == 0),
			})
		}
		out.Tags = append(out.Tags, tag)
	}
	return encodeXML(w, tagsDoctype, out)
}

// NeedsTags reports whether doc gets a companion tags file.
func NeedsTags(doc Document) bool {
	return len(doc.Editions) > 1
}

// displays pairs names with languages by index. Names past the last
// language reuse it.
func displays(names, languages, countries []string) []xmlDisplay {
	out := make([]xmlDisplay, 0, len(names))
	for i, name := range names {
		d := xmlDisplay{String: name, Language: languageAt(languages, i)}
		if i < len(countries) {
			d.Country = countries[i]
		}
		out = append(out, d)
	}
	return out
}

func languageAt(languages []string, i int) string {
	switch {
	case len(languages) == 0:
		return language.Undetermined
	case i < len(languages):
		return languages[i]
	default:
		return languages[len(languages)-1]
	}
}

func encodeXML(w io.Writer, doctype string, v any) error {
	var buf bytes.Buffer
	buf.WriteString(xmlHeader)
	buf.WriteString(doctype)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode chapter xml: %w", err)
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}
