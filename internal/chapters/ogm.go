package chapters

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"vfrchap/internal/timecode"
)

var ogmLine = regexp.MustCompile(`(?i)^CHAPTER(\d+)(NAME)?=(.*)$`)

// ReadOGM parses an OGM chapter file. Chapters are returned in file order;
// a CHAPTERxxNAME line names the chapter with the same number.
func ReadOGM(r io.Reader) ([]Chapter, error) {
	var out []Chapter
	index := map[int]int{}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(string(bytes.TrimPrefix(scanner.Bytes(), []byte("\xef\xbb\xbf"))))
		m := ogmLine.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		num, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("ogm line %d: %w", line, err)
		}
		if m[2] != "" {
			if i, ok := index[num]; ok {
				out[i].Names = []string{m[3]}
			}
			continue
		}
		ts, err := timecode.ParseTime(m[3])
		if err != nil {
			return nil, fmt.Errorf("ogm line %d: %w", line, err)
		}
		index[num] = len(out)
		out = append(out, Chapter{Start: ts, Enabled: true})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ogm chapters: %w", err)
	}
	return out, nil
}

// FramesFor maps each chapter start to the frame shown at that time.
func FramesFor(src timecode.Source, chapters []Chapter) ([]int, error) {
	frames := make([]int, len(chapters))
	for i, ch := range chapters {
		frame, err := src.FrameAt(ch.Start)
		if err != nil {
			return nil, fmt.Errorf("chapter %d: %w", i+1, err)
		}
		frames[i] = frame
	}
	return frames, nil
}
