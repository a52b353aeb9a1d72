// Package qpfile writes encoder keyframe hint files: one "<frame> K" (or
// "<frame> I" for IDR frames) line per output boundary.
package qpfile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"vfrchap/internal/fileutil"
)

// Options controls the frame type written for each boundary.
type Options struct {
	// IDR marks boundaries as "I" instead of "K".
	IDR bool
}

func (o Options) frameType() string {
	if o.IDR {
		return "I"
	}
	return "K"
}

// Write emits one line per frame. A leading frame 0 is skipped since the
// encoder always starts with a keyframe. frames is not modified.
func Write(w io.Writer, frames []int, opts Options) error {
	if len(frames) > 0 && frames[0] == 0 {
		frames = frames[1:]
	}
	bw := bufio.NewWriter(w)
	typ := opts.frameType()
	for _, frame := range frames {
		if frame < 0 {
			return fmt.Errorf("qpfile: negative frame %d", frame)
		}
		if _, err := fmt.Fprintf(bw, "%d %s\n", frame, typ); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile renders frames and replaces path atomically.
func WriteFile(path string, frames []int, opts Options) error {
	var buf bytes.Buffer
	if err := Write(&buf, frames, opts); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write qpfile: %w", err)
	}
	return nil
}
