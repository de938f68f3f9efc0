// Package ledger persists mining history to a local SQLite database: one row
// per session plus one row per mined block. The Recorder sink subscribes to
// the event stream so the mining loop never talks to storage directly.
package ledger
