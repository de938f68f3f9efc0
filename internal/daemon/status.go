package daemon

import (
	"sync"

	"aegminer/internal/miner"
	"aegminer/internal/services/aegisum"
)

// statusSnapshot is the tracker's view of the most recent session and poller
// observations.
type statusSnapshot struct {
	SessionID          string
	WalletAddress      string
	BlocksMined        int64
	Balance            float64
	Info               *aegisum.MiningInfo
	LastError          string
	LastErrorRetriable bool
}

// statusTracker folds the event stream into a current-state snapshot so
// Status never has to touch the worker or poller directly.
type statusTracker struct {
	mu   sync.Mutex
	snap statusSnapshot
}

func newStatusTracker() *statusTracker {
	return &statusTracker{}
}

func (t *statusTracker) beginSession(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.SessionID = sessionID
	t.snap.WalletAddress = ""
	t.snap.BlocksMined = 0
	t.snap.LastError = ""
	t.snap.LastErrorRetriable = false
}

func (t *statusTracker) snapshot() statusSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// Publish implements miner.Sink.
func (t *statusTracker) Publish(evt miner.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch evt.Type {
	case miner.EventAddressResolved:
		t.snap.WalletAddress = evt.Address
	case miner.EventBlockMined:
		t.snap.BlocksMined = evt.BlocksMined
	case miner.EventBalanceUpdated:
		t.snap.Balance = evt.Balance
	case miner.EventInfoUpdated:
		if evt.Info != nil {
			info := *evt.Info
			t.snap.Info = &info
		}
	case miner.EventMiningError:
		t.snap.LastError = evt.Message
		t.snap.LastErrorRetriable = evt.Retriable
	}
}

var _ miner.Sink = (*statusTracker)(nil)
