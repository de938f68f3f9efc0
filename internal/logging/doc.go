// Package logging constructs the slog loggers used across the daemon and CLI.
//
// It maps configuration (level, format, output paths) onto slog handlers,
// appends the daemon log file when a log directory is configured, and provides
// small attr helpers so call sites stay terse.
package logging
