// Package config loads, normalizes, and validates wemscribe configuration.
//
// Configuration is sourced from a TOML file (explicit --config flag, a
// wemscribe.toml in the working directory, or the default user config path)
// layered over built-in defaults. All path fields are expanded and made
// absolute during load so downstream packages never deal with relative
// paths or ~ prefixes.
package config
