package ledger

import "time"

// SessionRecord is a persisted view of one mining session.
type SessionRecord struct {
	ID            string
	WalletAddress string
	StartedAt     time.Time
	StoppedAt     *time.Time
	BlocksMined   int64
	FatalError    string
}

// Running reports whether the session has not been closed yet.
func (r SessionRecord) Running() bool {
	return r.StoppedAt == nil
}

// BlockRecord is a persisted view of one mined block.
type BlockRecord struct {
	SessionID string
	Seq       int64
	BlockHash string
	MinedAt   time.Time
}
