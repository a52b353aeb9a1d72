// Package pipeline runs one vfrchap job: parse the script, resolve its trims
// and write the requested timecodes, keyframes, chapters and audio cut.
//
// Every output is computed before the first file is written, so a failing
// job leaves no partial output behind. The audio cut runs last because it is
// the only step that starts an external program.
package pipeline
