// Package main hosts the vfrchap CLI.
//
// The root command runs one job: it reads the trims of an AviSynth-style
// script, resolves them against a frame rate or timecodes file and writes
// the requested timecodes, chapters, qpfile and cut audio. Subcommands
// convert timecodes (tcconv), turn chapter times back into keyframes
// (chapframes), report missing tools (check) and scaffold configuration.
//
// The heavy lifting lives in internal/pipeline and the packages it wires;
// this package only translates flags into requests and renders results.
package main
