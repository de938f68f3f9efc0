package miner

import "time"

// Session tracks a single mining run. It is owned exclusively by its worker
// and mutated only on the worker's goroutine; every other component observes
// it solely through emitted events.
type Session struct {
	ID            string
	WalletAddress string
	BlocksMined   int64
	StartedAt     time.Time
}
