package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"vfrchap/internal/audiocut"
	"vfrchap/internal/chapters"
	"vfrchap/internal/trims"
)

// ErrUsage reports a conflicting or incomplete request.
var ErrUsage = errors.New("invalid usage")

// Request is one job.
type Request struct {
	Script string
	Select trims.ScriptOptions

	// FPS is a rate or a v1/v2 timecodes file; empty uses the configured
	// default rate.
	FPS string
	// OFPS is the output rate trims are renumbered to.
	OFPS string
	// Timecodes receives the v2 timecodes of the source, plus
	// "<Timecodes>.ofps.txt" for the output rate when OFPS is set.
	Timecodes string

	Chapters     string
	ChapterNames string
	Template     string
	UID          uint64

	QPFile string
	IDR    bool

	Input  string
	Output string
	Delay  *int
	SBR    bool
	Merge  bool
	Remove bool

	Verbose bool
	// DryRun computes everything but writes no file and runs no cut.
	DryRun bool
}

// OFPSTimecodesPath is where the output-rate timecodes are written.
func (r Request) OFPSTimecodesPath() string {
	if r.Timecodes == "" || r.OFPS == "" {
		return ""
	}
	return r.Timecodes + ".ofps.txt"
}

// AudioOutput is the cut audio path, defaulting to "<input>.cut.mka".
func (r Request) AudioOutput() string {
	if r.Input == "" {
		return ""
	}
	if r.Output != "" {
		return r.Output
	}
	return audiocut.DefaultOutput(r.Input)
}

// Validate rejects requests whose options contradict each other.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Script) == "" {
		return fmt.Errorf("%w: no script given", ErrUsage)
	}
	if r.Template != "" && r.ChapterNames != "" {
		return fmt.Errorf("%w: choose either chapter names or a template, not both", ErrUsage)
	}
	if r.Template != "" && (r.Chapters == "" || chapters.FormatFromPath(r.Chapters) != chapters.MKV) {
		return fmt.Errorf("%w: a template needs a .xml chapters output", ErrUsage)
	}
	if r.ChapterNames != "" && r.Chapters == "" {
		return fmt.Errorf("%w: chapter names need a chapters output", ErrUsage)
	}
	if r.Output != "" && r.Input == "" {
		return fmt.Errorf("%w: an audio output needs an audio input", ErrUsage)
	}
	if r.Select.Line < 0 {
		return fmt.Errorf("%w: line must be positive", ErrUsage)
	}
	return nil
}
