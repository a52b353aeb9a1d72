// Package chapters renders resolved trims as chapter files.
//
// Three output formats are supported and chosen once from the output path:
// OGM text, x264 text and Matroska XML. Matroska documents may carry several
// editions, per-language names and a companion tags file. Templates written
// in TOML describe such documents and reference resolved trims by index.
package chapters
