package preflight

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFailed reports at least one failed check.
var ErrFailed = errors.New("preflight failed")

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Target is a named file a run reads or writes.
type Target struct {
	Name string
	Path string
}

// Plan lists the files of one run. Empty paths are skipped.
type Plan struct {
	Inputs  []Target
	Outputs []Target
}

// RunAll checks every input and output of plan.
func RunAll(plan Plan) []Result {
	var results []Result
	for _, in := range plan.Inputs {
		if in.Path == "" {
			continue
		}
		results = append(results, CheckInputFile(in.Name, in.Path))
	}
	for _, out := range plan.Outputs {
		if out.Path == "" {
			continue
		}
		results = append(results, CheckOutputFile(out.Name, out.Path))
	}
	return results
}

// Err joins the failed results into one error, or returns nil.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r.Name+": "+r.Detail)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrFailed, strings.Join(failed, "; "))
}
