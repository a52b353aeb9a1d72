package chapters

import (
	"path/filepath"
	"strings"
)

// Format is the chapter file flavour.
type Format int

const (
	// OGM writes CHAPTERxx=/CHAPTERxxNAME= pairs.
	OGM Format = iota
	// X264 writes "<start> <name>" lines.
	X264
	// MKV writes Matroska chapter XML.
	MKV
)

func (f Format) String() string {
	switch f {
	case X264:
		return "x264"
	case MKV:
		return "mkv"
	default:
		return "ogm"
	}
}

// FormatFromPath picks the format from the output extension: ".xml" is
// Matroska, ".x264.txt" is x264 and anything else is OGM.
func FormatFromPath(path string) Format {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".xml"):
		return MKV
	case strings.HasSuffix(name, ".x264.txt"):
		return X264
	default:
		return OGM
	}
}

// TagsPath returns the companion tags path for a Matroska chapters path:
// "movie.xml" becomes "movietags.xml".
func TagsPath(path string) string {
	return trimXML(path) + "tags.xml"
}

// QPFilePath returns the keyframe file written next to a template's
// chapters: "movie.xml" becomes "movie.qpfile".
func QPFilePath(path string) string {
	return trimXML(path) + ".qpfile"
}

func trimXML(path string) string {
	if ext := filepath.Ext(path); strings.EqualFold(ext, ".xml") {
		return path[:len(path)-len(ext)]
	}
	return path
}
