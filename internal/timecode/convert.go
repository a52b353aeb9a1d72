package timecode

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// ConvertOptions controls Convert.
type ConvertOptions struct {
	// OutputPath receives the v2 table.
	OutputPath string
	// First continues an existing file from frame First.
	First int
	// Jobs splits the computation across workers; values below 1 mean 1.
	Jobs int
	// Progress is called with the number of frames finished since the last
	// call. It may be called from several goroutines.
	Progress func(frames int)
	Logger   *slog.Logger
}

// convertChunk is the number of frames a worker computes between progress
// reports and cancellation checks.
const convertChunk = 4096

// Convert writes frames v2 timestamps of the source spec names, either a
// rate or a v1/v2 timecodes file.
func Convert(ctx context.Context, spec string, frames int, opts ConvertOptions) error {
	if frames <= 0 {
		return fmt.Errorf("frame count %d must be positive", frames)
	}
	if opts.First < 0 || opts.First >= frames {
		return fmt.Errorf("first frame %d is outside 0-%d", opts.First, frames-1)
	}
	src, err := Parse(spec, frames, ParseOptions{Logger: opts.Logger})
	if err != nil {
		return err
	}

	table := make([]int64, frames)
	if vfr, ok := src.(*VFR); ok {
		copy(table, vfr.table)
		report(opts.Progress, frames-opts.First)
	} else if err := fillParallel(ctx, src, table, opts); err != nil {
		return err
	}
	return writeOutput(ParseOptions{OutputPath: opts.OutputPath, First: opts.First}, table)
}

// fillParallel computes table[First:] from a constant-rate source. CFR
// timestamps are independent per frame, so workers take disjoint chunks.
func fillParallel(ctx context.Context, src Source, table []int64, opts ConvertOptions) error {
	jobs := max(opts.Jobs, 1)
	chunks := make(chan [2]int)
	errs := make([]error, jobs)

	var wg sync.WaitGroup
	for w := range jobs {
		wg.Go(func() {
			for c := range chunks {
				for f := c[0]; f < c[1]; f++ {
					ts, err := src.Timestamp(f, Nanoseconds)
					if err != nil {
						errs[w] = err
						break
					}
					table[f] = ts
				}
				report(opts.Progress, c[1]-c[0])
			}
		})
	}

	var cancelled error
feed:
	for start := opts.First; start < len(table); start += convertChunk {
		if cancelled = ctx.Err(); cancelled != nil {
			break
		}
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
			break feed
		case chunks <- [2]int{start, min(start+convertChunk, len(table))}:
		}
	}
	close(chunks)
	wg.Wait()
	if cancelled != nil {
		return cancelled
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func report(progress func(int), frames int) {
	if progress != nil && frames > 0 {
		progress(frames)
	}
}
