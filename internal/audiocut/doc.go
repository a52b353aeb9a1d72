// Package audiocut drives mkvmerge to cut an audio track at trim boundaries.
//
// Recent mkvmerge releases split by "parts", keeping only the trimmed ranges
// in one output file. Older releases split by timecodes into numbered files
// that are then optionally merged and removed.
package audiocut
