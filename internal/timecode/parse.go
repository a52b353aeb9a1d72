package timecode

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"vfrchap/internal/fileutil"
	"vfrchap/internal/logging"
)

// ErrUnsupportedFormat reports a timecode file without a v1 or v2 header.
var ErrUnsupportedFormat = errors.New("timecode file is not in a supported format")

// ParseOptions controls optional side effects of Parse.
type ParseOptions struct {
	// OutputPath receives the v2 form of the parsed source when set.
	OutputPath string
	// First skips the header and the first First frames of the output so a
	// later run can continue an existing file.
	First int
	// Lazy leaves a v2 table at its stored length; frames past it are
	// extrapolated only when queried. Ignored when OutputPath is set.
	Lazy   bool
	Logger *slog.Logger
}

// Parse classifies spec as a CFR rate or a timecode file and builds the
// matching Source. needed is the number of frames the caller will query;
// v1 files are materialized and v2 tables extended to that length.
//
// A spec that names an existing file is always read as a file, so a file
// called "24" is not mistaken for a rate.
func Parse(spec string, needed int, opts ParseOptions) (Source, error) {
	logger := logging.NewComponentLogger(opts.Logger, "timecode")
	if info, err := os.Stat(spec); err == nil && !info.IsDir() {
		return parseFile(spec, needed, opts, logger)
	}
	rate, err := ParseRational(spec)
	if err != nil {
		if _, statErr := os.Stat(spec); statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
			return nil, fmt.Errorf("timecodes %q: %w", spec, statErr)
		}
		return nil, fmt.Errorf("timecodes %q is neither a rate nor an existing file: %w", spec, err)
	}
	src, err := NewCFR(rate)
	if err != nil {
		return nil, err
	}
	if opts.OutputPath != "" {
		if err := writeOutput(opts, MaterializeCFR(rate, OutputFrames(src, needed))); err != nil {
			return nil, err
		}
	}
	logger.Debug("parsed constant rate", logging.String("rate", rate.String()))
	return src, nil
}

func parseFile(path string, needed int, opts ParseOptions, logger *slog.Logger) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timecodes: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	lines := splitLines(data)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrUnsupportedFormat, path)
	}
	header := strings.ToLower(strings.TrimSpace(lines[0]))
	body := lines[1:]

	var src Source
	var table []int64
	switch {
	case strings.HasPrefix(header, headerV1):
		v1, err := ParseV1(body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if len(v1.Overrides) == 0 {
			rate := CorrectToNTSC(v1.Assume)
			cfr, err := NewCFR(rate)
			if err != nil {
				return nil, err
			}
			logger.Debug("v1 timecodes without overrides read as constant rate",
				logging.String("path", path),
				logging.String("rate", rate.String()),
			)
			if opts.OutputPath != "" {
				if err := writeOutput(opts, MaterializeCFR(rate, OutputFrames(cfr, needed))); err != nil {
					return nil, err
				}
			}
			return cfr, nil
		}
		table = MaterializeV1(v1, needed)
		vfr, err := NewVFR(table, opts.Logger)
		if err != nil {
			return nil, err
		}
		src = vfr
		logger.Debug("materialized v1 timecodes",
			logging.String("path", path),
			logging.Int("overrides", len(v1.Overrides)),
			logging.Int("frames", len(table)),
		)
	case strings.HasPrefix(header, headerV2):
		parsed, err := ParseV2(body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		vfr, err := NewVFR(parsed, opts.Logger)
		if err != nil {
			return nil, err
		}
		if !opts.Lazy || opts.OutputPath != "" {
			if err := vfr.Extend(needed); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
		table = vfr.table
		src = vfr
		logger.Debug("loaded v2 timecodes",
			logging.String("path", path),
			logging.Int("frames", len(parsed)),
		)
	default:
		return nil, fmt.Errorf("%w: %s starts with %q", ErrUnsupportedFormat, path, strings.TrimSpace(lines[0]))
	}

	if opts.OutputPath != "" {
		if err := writeOutput(opts, table); err != nil {
			return nil, err
		}
	}
	return src, nil
}

// OutputFrames is how many frames a v2 rendering of src covers when needed
// frames must be addressable: needed+2 for a constant rate, and the longer
// of needed and the stored table for a variable one.
func OutputFrames(src Source, needed int) int {
	if vfr, ok := src.(*VFR); ok {
		return max(needed, vfr.Len())
	}
	return needed + 2
}

// WriteSource writes the v2 form of src covering frames frames.
func WriteSource(src Source, frames int, opts ParseOptions) error {
	table := make([]int64, frames)
	for i := range table {
		ts, err := src.Timestamp(i, Nanoseconds)
		if err != nil {
			return err
		}
		table[i] = ts
	}
	return writeOutput(opts, table)
}

func writeOutput(opts ParseOptions, table []int64) error {
	var buf bytes.Buffer
	if err := WriteV2(&buf, table, opts.First); err != nil {
		return fmt.Errorf("render v2 timecodes: %w", err)
	}
	if opts.First > 0 {
		if err := fileutil.AppendLocked(opts.OutputPath, buf.Bytes()); err != nil {
			return fmt.Errorf("append v2 timecodes: %w", err)
		}
		return nil
	}
	if err := fileutil.WriteFileAtomic(opts.OutputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write v2 timecodes: %w", err)
	}
	return nil
}

func splitLines(data []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	return lines
}
