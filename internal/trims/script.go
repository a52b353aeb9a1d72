package trims

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoTrims reports a script without a usable trim line.
var ErrNoTrims = errors.New("script has no uncommented trims")

// Trim is one trim(start, end) call as written. End > 0 is the inclusive
// last frame, End == 0 extends to the end of the source, and End < 0 is a
// length: the last frame is Start - End - 1.
type Trim struct {
	Start int
	End   int
}

// Open reports whether the trim runs to the end of the source.
func (t Trim) Open() bool {
	return t.End == 0
}

// Last returns the inclusive last frame. ok is false for open trims.
func (t Trim) Last() (last int, ok bool) {
	switch {
	case t.End > 0:
		return t.End, true
	case t.End < 0:
		return t.Start - t.End - 1, true
	default:
		return 0, false
	}
}

func (t Trim) String() string {
	return fmt.Sprintf("trim(%d,%d)", t.Start, t.End)
}

// ScriptOptions narrows which script line supplies the trims.
type ScriptOptions struct {
	// Label selects lines whose comment mentions it, case-insensitively. A
	// label spelled "trim" in any case instead matches trim calls written
	// with exactly that spelling.
	Label string
	// Reverse scans from the last line to the first.
	Reverse bool
	// Line is a 1-based line number. It overrides Label.
	Line int
	// Clip keeps only calls written as <Clip>.trim(...).
	Clip string
}

func (o ScriptOptions) describe() string {
	var parts []string
	if o.Line > 0 {
		parts = append(parts, fmt.Sprintf("on line %d", o.Line))
	} else if o.Label != "" {
		parts = append(parts, fmt.Sprintf("with label %q", o.Label))
	}
	if o.Clip != "" {
		parts = append(parts, fmt.Sprintf("on clip %q", o.Clip))
	}
	return strings.Join(parts, " ")
}

// ParseScriptFile reads path and calls ParseScript.
func ParseScriptFile(path string, opts ScriptOptions) ([]Trim, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	trims, err := ParseScript(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return trims, nil
}

// ParseScript returns every uncommented trim on the first line that matches
// opts. Text after the first '#' on a line is a comment.
func ParseScript(r io.Reader, opts ScriptOptions) ([]Trim, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	label := strings.TrimSpace(opts.Label)
	if opts.Line > 0 {
		label = ""
		if opts.Line > len(lines) {
			return nil, fmt.Errorf("%w %s: script has %d lines", ErrNoTrims, opts.describe(), len(lines))
		}
		lines = lines[opts.Line-1 : opts.Line]
	}
	selector, commentLabel := buildSelector(label)

	for i := range lines {
		line := lines[i]
		if opts.Reverse {
			line = lines[len(lines)-1-i]
		}
		code, comment, _ := strings.Cut(line, "#")
		if commentLabel != "" && !strings.Contains(strings.ToLower(comment), strings.ToLower(commentLabel)) {
			continue
		}
		if !hasCall(selector, code, opts.Clip) {
			continue
		}
		return extract(trimCall, code, opts.Clip)
	}

	if desc := opts.describe(); desc != "" {
		return nil, fmt.Errorf("%w %s", ErrNoTrims, desc)
	}
	return nil, ErrNoTrims
}

const callPattern = `(?:\b(\w+)\s*\.\s*)?\b%s\s*\(\s*(\d+)\s*,\s*(-?\d+)\s*\)`

// trimCall matches a trim call in any letter case.
var trimCall = regexp.MustCompile("(?i)" + fmt.Sprintf(callPattern, "trim"))

// buildSelector returns the pattern that picks the script line and, for
// ordinary labels, the text the comment must contain. Every call on the
// picked line is extracted with trimCall.
func buildSelector(label string) (*regexp.Regexp, string) {
	if strings.EqualFold(label, "trim") {
		return regexp.MustCompile(fmt.Sprintf(callPattern, regexp.QuoteMeta(label))), ""
	}
	return trimCall, label
}

func hasCall(re *regexp.Regexp, code, clip string) bool {
	for _, m := range re.FindAllStringSubmatch(code, -1) {
		if clip == "" || strings.EqualFold(m[1], clip) {
			return true
		}
	}
	return false
}

func extract(call *regexp.Regexp, code, clip string) ([]Trim, error) {
	var out []Trim
	for _, m := range call.FindAllStringSubmatch(code, -1) {
		if clip != "" && !strings.EqualFold(m[1], clip) {
			continue
		}
		start, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, fmt.Errorf("trim start %q: %w", m[2], err)
		}
		end, err := strconv.Atoi(m[3])
		if err != nil {
			return nil, fmt.Errorf("trim end %q: %w", m[3], err)
		}
		out = append(out, Trim{Start: start, End: end})
	}
	return out, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	if len(lines) > 0 {
		lines[0] = strings.TrimPrefix(lines[0], "\ufeff")
	}
	return lines, nil
}

// FramesNeeded returns how many source frames must be addressable to
// resolve trims: one past the frame after the furthest boundary.
func FramesNeeded(trims []Trim) int {
	furthest := 0
	for _, t := range trims {
		if t.Start > furthest {
			furthest = t.Start
		}
		if last, ok := t.Last(); ok && last > furthest {
			furthest = last
		}
	}
	return furthest + 2
}
