package audiocut

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"vfrchap/internal/timecode"
)

// ErrNoCuts reports an edit that keeps the whole audio track.
var ErrNoCuts = errors.New("no audio cut points")

var delayPattern = regexp.MustCompile(`DELAY (-?\d+)`)

// DelayFromName extracts the "DELAY <ms>" marker demuxers leave in file
// names.
func DelayFromName(path string) (int, bool) {
	m := delayPattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0, false
	}
	delay, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return delay, true
}

// PartsSpec renders the "--split parts:" argument. When the edit keeps the
// first frame the leading range starts at zero; an unpaired trailing cut
// keeps everything after it.
func PartsSpec(cuts []int64, includesStart bool) (string, error) {
	if len(cuts) == 0 {
		return "", ErrNoCuts
	}
	var tokens []string
	rest := cuts
	if includesStart {
		tokens = append(tokens, "-"+formatCut(cuts[0]))
		rest = cuts[1:]
	}
	for i := 0; i < len(rest); i += 2 {
		if i+1 < len(rest) {
			tokens = append(tokens, formatCut(rest[i])+"-"+formatCut(rest[i+1]))
			continue
		}
		tokens = append(tokens, formatCut(rest[i])+"-")
	}
	return "parts:" + strings.Join(tokens, ",+"), nil
}

// TimecodesSpec renders the "--split timecodes:" argument used by mkvmerge
// releases without parts splitting.
func TimecodesSpec(cuts []int64) (string, error) {
	if len(cuts) == 0 {
		return "", ErrNoCuts
	}
	parts := make([]string, len(cuts))
	for i, c := range cuts {
		parts[i] = formatCut(c)
	}
	return "timecodes:" + strings.Join(parts, ","), nil
}

func formatCut(ns int64) string {
	return timecode.FormatTime(ns, timecode.Nano)
}

// SplitFile is the name mkvmerge gives the 1-based part n of a timecodes
// split written to output.
func SplitFile(output string, n int) string {
	return fmt.Sprintf("%s.split-%03d.mka", output, n)
}

// DefaultOutput is the audio output used when only an input is given.
func DefaultOutput(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".cut.mka"
}
