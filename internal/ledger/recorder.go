package ledger

import (
	"context"
	"log/slog"
	"time"

	"aegminer/internal/logging"
	"aegminer/internal/miner"
)

// Recorder is an event sink that persists worker milestones into the ledger.
// Persistence failures are logged and never propagate to producers.
type Recorder struct {
	store  *Store
	logger *slog.Logger
}

// NewRecorder wires a ledger store into the event stream.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Recorder{store: store, logger: logger}
}

// Publish implements miner.Sink.
func (r *Recorder) Publish(evt miner.Event) {
	if r == nil || r.store == nil || evt.Source != miner.SourceWorker {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	switch evt.Type {
	case miner.EventAddressResolved:
		err = r.store.RecordAddress(ctx, evt.SessionID, evt.Address)
	case miner.EventBlockMined:
		err = r.store.RecordBlock(ctx, evt.SessionID, evt.BlocksMined, evt.BlockHash, evt.Timestamp)
	case miner.EventMiningError:
		if !evt.Retriable {
			err = r.store.EndSession(ctx, evt.SessionID, evt.Timestamp, evt.Message)
		}
	}
	if err != nil {
		r.logger.Warn("ledger write failed",
			logging.Args(
				logging.Error(err),
				logging.String("event_type", string(evt.Type)),
				logging.String("session_id", evt.SessionID),
			)...)
	}
}

var _ miner.Sink = (*Recorder)(nil)
