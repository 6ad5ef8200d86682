// Package config loads, normalizes, and validates muxsystem configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TMDB_API_KEY. A muxsystem.toml in the working directory takes precedence over
// the per-user file so a release repository carries its own show settings.
package config
