// Package timecode maps frame numbers to presentation timestamps for constant
// and variable frame-rate sources.
//
// A Source is either a CFR rate or a VFR table of per-frame nanosecond
// timestamps. The kind is fixed when the source is built by Parse, NewCFR or
// NewVFR; callers work through the Source interface and never branch on the
// kind themselves. All CFR arithmetic is exact rational arithmetic rounded once
// to whole nanoseconds, and millisecond text from timecode files is parsed
// without going through float64, so long timelines do not drift.
//
// The package also materializes v1 (override based) timecode files into v2
// per-frame tables, writes the v2 interchange form, snaps near-NTSC rates to
// their 1000/1001 values, and formats timestamps as HH:MM:SS.fffffffff.
package timecode
