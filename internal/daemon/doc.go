// Package daemon coordinates the mining supervisor, status poller, event
// hub, and session ledger behind a single-instance lock. It exposes the
// operations the IPC surface serves: start and stop mining, status
// snapshots, on-demand wallet queries, and session history.
package daemon
