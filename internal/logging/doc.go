// Package logging assembles the structured slog loggers used by vfrchap.
//
// It owns the console and JSON handlers and the level and output plumbing.
// Components obtain a tagged logger through NewComponentLogger, and warnings
// that change what gets written go through WarnWithContext so every such line
// carries an event type, a hint and the impact on the output. Log lines go to
// stderr because stdout is reserved for command output.
package logging
