package chapters

import (
	"bufio"
	"fmt"
	"io"

	"vfrchap/internal/timecode"
)

// WriteOGM writes CHAPTERxx=<start> and CHAPTERxxNAME=<name> lines with
// nanosecond timestamps.
func WriteOGM(w io.Writer, chapters []Chapter) error {
	bw := bufio.NewWriter(w)
	for i, ch := range chapters {
		start := timecode.FormatTime(ch.Start, timecode.Nano)
		if _, err := fmt.Fprintf(bw, "CHAPTER%02d=%s\nCHAPTER%02dNAME=%s\n", i+1, start, i+1, ch.Name()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteX264 writes "<start> <name>" lines with millisecond timestamps.
func WriteX264(w io.Writer, chapters []Chapter) error {
	bw := bufio.NewWriter(w)
	for _, ch := range chapters {
		if _, err := fmt.Fprintf(bw, "%s %s\n", timecode.FormatTime(ch.Start, timecode.Milli), ch.Name()); err != nil {
			return err
		}
	}
	return bw.Flush()
}
