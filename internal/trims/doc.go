// Package trims turns the trim() calls of an AviSynth script into gapless
// output numbering.
//
// ParseScript selects one script line and returns its trims in order.
// Resolver maps every trim onto a timecode.Source, removes the material
// between trims so the output is numbered from zero without gaps, collects the
// timestamps where an audio track must be cut, and optionally re-expresses
// the output boundaries at another frame rate.
package trims
