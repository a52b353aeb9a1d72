package audiocut

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Job describes one audio cut.
type Job struct {
	Input  string
	Output string
	// Cuts are source timestamps in nanoseconds where the audio is split.
	Cuts []int64
	// IncludesStart reports whether the edit keeps the first frame.
	IncludesStart bool
	// Delay overrides the delay found in the input name, in milliseconds.
	Delay *int
	// SBR forces the HE-AAC flag for raw AAC input.
	SBR bool
	// Merge joins the kept parts of a timecodes split.
	Merge bool
	// Remove deletes the split parts after they were merged.
	Remove bool
	// Verbose lets mkvmerge print progress instead of passing -q.
	Verbose bool
}

// Plan is the set of mkvmerge invocations for a Job.
type Plan struct {
	Output string
	Split  []string
	// Merge is nil unless kept parts are joined.
	Merge []string
	// Remove lists split files deleted after the merge.
	Remove []string
}

// Describe renders the split command for logs.
func (p Plan) Describe(binary string) string {
	quoted := make([]string, 0, len(p.Split)+1)
	quoted = append(quoted, strconv.Quote(binary))
	for _, arg := range p.Split {
		quoted = append(quoted, strconv.Quote(arg))
	}
	return strings.Join(quoted, " ")
}

// BuildPlan turns job into mkvmerge arguments for the probed release.
func BuildPlan(job Job, probe Probe) (Plan, error) {
	if job.Input == "" {
		return Plan{}, errors.New("audio input required")
	}
	output := job.Output
	if output == "" {
		output = DefaultOutput(job.Input)
	}
	parts := probe.PartsSplit()

	var spec string
	var err error
	if parts {
		spec, err = PartsSpec(job.Cuts, job.IncludesStart)
	} else {
		spec, err = TimecodesSpec(job.Cuts)
	}
	if err != nil {
		return Plan{}, err
	}

	target := output
	if !parts {
		target += ".split.mka"
	}
	args := []string{"-o", target}
	tid := probe.Track.ID
	if job.Delay != nil {
		args = append(args, "--sync", fmt.Sprintf("%d:%d", tid, *job.Delay))
	} else if delay, ok := DelayFromName(job.Input); ok {
		args = append(args, "--sync", fmt.Sprintf("%d:%d", tid, delay))
	}
	switch {
	case job.SBR || probe.Track.SBR:
		args = append(args, "--aac-is-sbr", fmt.Sprintf("%d:1", tid))
	case strings.HasSuffix(strings.ToLower(job.Input), ".aac"):
		args = append(args, "--aac-is-sbr", fmt.Sprintf("%d:0", tid))
	}
	args = append(args, job.Input, "--split", spec)
	if !job.Verbose {
		args = append(args, "-q")
	}

	plan := Plan{Output: output, Split: args}
	if parts {
		return plan, nil
	}
	// A timecodes split yields len(cuts)+1 files; kept ranges are the odd
	// ones when the edit starts at frame 0 and the even ones otherwise.
	total := len(job.Cuts) + 1
	if job.Merge {
		merge := []string{"-o", output}
		for n := 1; n <= total; n++ {
			if (n%2 == 1) != job.IncludesStart {
				continue
			}
			name := SplitFile(output, n)
			if len(merge) > 2 {
				name = "+" + name
			}
			merge = append(merge, name)
		}
		if !job.Verbose {
			merge = append(merge, "-q")
		}
		plan.Merge = merge
	}
	if job.Merge && job.Remove {
		for n := 1; n <= total; n++ {
			plan.Remove = append(plan.Remove, SplitFile(output, n))
		}
	}
	return plan, nil
}
