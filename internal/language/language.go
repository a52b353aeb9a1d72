package language

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ErrUnknownLanguage reports a code that maps to no ISO 639 language.
var ErrUnknownLanguage = errors.New("unknown language")

// ErrUnknownCountry reports a code that is not an ISO 3166-1 country.
var ErrUnknownCountry = errors.New("unknown country")

// Undetermined is the Matroska code for an unknown language.
const Undetermined = "und"

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	term    string   // ISO 639-2/T
	bib     string   // ISO 639-2/B when it differs from term
	display string   // Human-readable name
	words   []string // Full word forms (e.g. "english")
}

var languages = []entry{
	{"en", "eng", "", "English", []string{"english"}},
	{"es", "spa", "", "Spanish", []string{"spanish"}},
	{"fr", "fra", "fre", "French", []string{"french"}},
	{"de", "deu", "ger", "German", []string{"german"}},
	{"it", "ita", "", "Italian", []string{"italian"}},
	{"pt", "por", "", "Portuguese", []string{"portuguese"}},
	{"ja", "jpn", "", "Japanese", []string{"japanese"}},
	{"ko", "kor", "", "Korean", []string{"korean"}},
	{"zh", "zho", "chi", "Chinese", []string{"chinese"}},
	{"ru", "rus", "", "Russian", []string{"russian"}},
	{"ar", "ara", "", "Arabic", []string{"arabic"}},
	{"nl", "nld", "dut", "Dutch", []string{"dutch"}},
	{"pl", "pol", "", "Polish", []string{"polish"}},
	{"sv", "swe", "", "Swedish", []string{"swedish"}},
	{"cs", "ces", "cze", "Czech", []string{"czech"}},
	{"el", "ell", "gre", "Greek", []string{"greek"}},
	{"fi", "fin", "", "Finnish", []string{"finnish"}},
}

var byKey map[string]*entry

func init() {
	byKey = make(map[string]*entry, len(languages)*4)
	for i := range languages {
		e := &languages[i]
		byKey[e.code2] = e
		byKey[e.term] = e
		if e.bib != "" {
			byKey[e.bib] = e
		}
		for _, w := range e.words {
			byKey[w] = e
		}
	}
}

func (e *entry) matroska() string {
	if e.bib != "" {
		return e.bib
	}
	return e.term
}

// Chapter converts a language code or English word to the ISO 639-2
// bibliographic code Matroska chapters use. "und" passes through.
func Chapter(code string) (string, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "", fmt.Errorf("%w: empty code", ErrUnknownLanguage)
	}
	if code == Undetermined {
		return Undetermined, nil
	}
	if e, ok := byKey[code]; ok {
		return e.matroska(), nil
	}
	base, err := language.ParseBase(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, code)
	}
	iso3 := base.ISO3()
	if iso3 == "" || iso3 == Undetermined {
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, code)
	}
	return iso3, nil
}

// Country converts a region code to the lowercase ISO 3166-1 alpha-2 form.
// An empty code means no country and is returned unchanged.
func Country(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", nil
	}
	region, err := language.ParseRegion(code)
	if err != nil || !region.IsCountry() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCountry, code)
	}
	return strings.ToLower(region.String()), nil
}

// NormalizeList converts every code with Chapter, dropping blanks and
// duplicates while keeping the first occurrence order.
func NormalizeList(codes []string) ([]string, error) {
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, raw := range codes {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		code, err := Chapter(raw)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out, nil
}

// NormalizeCountries converts every code with Country. Blank entries are
// kept so countries stay aligned with their languages.
func NormalizeCountries(codes []string) ([]string, error) {
	out := make([]string, len(codes))
	for i, raw := range codes {
		code, err := Country(raw)
		if err != nil {
			return nil, err
		}
		out[i] = code
	}
	return out, nil
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	trimmed := strings.ToLower(strings.TrimSpace(code))
	if trimmed == "" {
		return "Unknown"
	}
	if e, ok := byKey[trimmed]; ok {
		return e.display
	}
	if base, err := language.ParseBase(trimmed); err == nil {
		if name := display.English.Languages().Name(base); name != "" {
			return name
		}
	}
	return strings.ToUpper(trimmed)
}
