// Package config loads, normalizes, and validates aegminer configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// AEGISUM_CLI. The Config type centralizes every knob the daemon and CLI need:
// the wallet node executable, loop timing, storage paths, and the control
// socket location.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
