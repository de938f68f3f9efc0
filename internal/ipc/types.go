package ipc

import (
	"time"

	"aegminer/internal/miner"
	"aegminer/internal/services/aegisum"
)

// Event mirrors the hub event for IPC callers.
type Event = miner.Event

// MiningInfo mirrors the parsed node statistics for IPC callers.
type MiningInfo = aegisum.MiningInfo

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon and session status information.
type StatusResponse struct {
	Running            bool        `json:"running"`
	PID                int         `json:"pid"`
	MiningState        string      `json:"mining_state"`
	SessionID          string      `json:"session_id"`
	WalletAddress      string      `json:"wallet_address"`
	BlocksMined        int64       `json:"blocks_mined"`
	Balance            float64     `json:"balance"`
	Info               *MiningInfo `json:"info,omitempty"`
	LastError          string      `json:"last_error"`
	LastErrorRetriable bool        `json:"last_error_retriable"`
	LedgerDBPath       string      `json:"ledger_db_path"`
	LockPath           string      `json:"lock_path"`
}

// StartMiningRequest begins a new mining session.
type StartMiningRequest struct{}

// StartMiningResponse reports whether a session was started.
type StartMiningResponse struct {
	Started   bool   `json:"started"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// StopMiningRequest ends the live mining session.
type StopMiningRequest struct{}

// StopMiningResponse reports whether a session was stopped.
type StopMiningResponse struct {
	Stopped bool   `json:"stopped"`
	Message string `json:"message"`
}

// ShutdownRequest asks the daemon process to exit.
type ShutdownRequest struct{}

// ShutdownResponse acknowledges a shutdown request.
type ShutdownResponse struct {
	Stopping bool `json:"stopping"`
}

// EventsRequest fetches events after the given sequence cursor. WaitMillis
// bounds how long the daemon blocks when no events are buffered yet.
type EventsRequest struct {
	Since      uint64 `json:"since"`
	Limit      int    `json:"limit"`
	WaitMillis int    `json:"wait_millis"`
}

// EventsResponse returns buffered events and the next cursor.
type EventsResponse struct {
	Events []Event `json:"events"`
	Next   uint64  `json:"next"`
}

// BalanceRequest fetches the wallet balance from the node.
type BalanceRequest struct{}

// BalanceResponse returns the wallet balance.
type BalanceResponse struct {
	Balance float64 `json:"balance"`
}

// MiningInfoRequest fetches current mining statistics from the node.
type MiningInfoRequest struct{}

// MiningInfoResponse returns parsed mining statistics.
type MiningInfoResponse struct {
	Info MiningInfo `json:"info"`
}

// SessionSummary is the wire view of one recorded mining session.
type SessionSummary struct {
	ID            string     `json:"id"`
	WalletAddress string     `json:"wallet_address"`
	StartedAt     time.Time  `json:"started_at"`
	StoppedAt     *time.Time `json:"stopped_at,omitempty"`
	BlocksMined   int64      `json:"blocks_mined"`
	FatalError    string     `json:"fatal_error,omitempty"`
	Running       bool       `json:"running"`
}

// HistoryRequest fetches recorded sessions, newest first.
type HistoryRequest struct {
	Limit int `json:"limit"`
}

// HistoryResponse returns recorded sessions.
type HistoryResponse struct {
	Sessions []SessionSummary `json:"sessions"`
}

// BlockSummary is the wire view of one recorded block.
type BlockSummary struct {
	SessionID string    `json:"session_id"`
	Seq       int64     `json:"seq"`
	BlockHash string    `json:"block_hash"`
	MinedAt   time.Time `json:"mined_at"`
}

// SessionBlocksRequest fetches the blocks recorded for one session.
type SessionBlocksRequest struct {
	SessionID string `json:"session_id"`
}

// SessionBlocksResponse returns recorded blocks in mining order.
type SessionBlocksResponse struct {
	Blocks []BlockSummary `json:"blocks"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
