// Package miner contains the mining control plane: the supervisor that owns
// at most one active mining session, the worker state machine that drives
// block generation with retry and backoff, the independent status poller, and
// the event types through which every observer learns about state changes.
//
// Concurrency model: the worker and poller each run on their own goroutine.
// Session state is owned and mutated solely by its worker; cross-goroutine
// communication happens exclusively through one-way event emission into a
// Sink. The Hub implementation is a bounded drop-oldest ring, so producers
// are never blocked and the most recent status is always eventually visible.
package miner
