// Package config loads, normalizes, and validates vfrchap configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. Command-line flags override individual
// values after Load returns; the Config type only carries the defaults a user
// wants applied to every run.
package config
