package ledger_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"aegminer/internal/ledger"
	"aegminer/internal/miner"
	"aegminer/internal/services/aegisum"
)

func openTestStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.OpenPath(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSessionLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	if err := store.BeginSession(ctx, "session-1", started); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	if err := store.RecordAddress(ctx, "session-1", "aeg1qtest"); err != nil {
		t.Fatalf("RecordAddress: %v", err)
	}
	for seq := int64(1); seq <= 3; seq++ {
		if err := store.RecordBlock(ctx, "session-1", seq, "hash", started.Add(time.Duration(seq)*time.Second)); err != nil {
			t.Fatalf("RecordBlock %d: %v", seq, err)
		}
	}

	sessions, err := store.Sessions(ctx, 10)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected one session, got %d", len(sessions))
	}
	record := sessions[0]
	if record.WalletAddress != "aeg1qtest" {
		t.Fatalf("address: got %q", record.WalletAddress)
	}
	if record.BlocksMined != 3 {
		t.Fatalf("blocks mined: got %d", record.BlocksMined)
	}
	if !record.Running() {
		t.Fatal("expected running session")
	}

	stopped := started.Add(time.Minute)
	if err := store.EndSession(ctx, "session-1", stopped, ""); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	sessions, err = store.Sessions(ctx, 10)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if sessions[0].Running() {
		t.Fatal("expected closed session")
	}
	if !sessions[0].StoppedAt.Equal(stopped) {
		t.Fatalf("stopped_at: got %v", sessions[0].StoppedAt)
	}

	blocks, err := store.SessionBlocks(ctx, "session-1")
	if err != nil {
		t.Fatalf("SessionBlocks: %v", err)
	}
	if len(blocks) != 3 || blocks[0].Seq != 1 || blocks[2].Seq != 3 {
		t.Fatalf("unexpected blocks: %v", blocks)
	}

	total, err := store.TotalBlocks(ctx)
	if err != nil {
		t.Fatalf("TotalBlocks: %v", err)
	}
	if total != 3 {
		t.Fatalf("total blocks: got %d", total)
	}
}

func TestEndSessionIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	started := time.Now().UTC()

	if err := store.BeginSession(ctx, "session-1", started); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	first := started.Add(time.Second)
	if err := store.EndSession(ctx, "session-1", first, "wallet locked"); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	// A second close must not overwrite the recorded stop.
	if err := store.EndSession(ctx, "session-1", started.Add(time.Hour), ""); err != nil {
		t.Fatalf("EndSession repeat: %v", err)
	}

	sessions, err := store.Sessions(ctx, 1)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if !sessions[0].StoppedAt.Equal(first) {
		t.Fatalf("stopped_at overwritten: %v", sessions[0].StoppedAt)
	}
	if sessions[0].FatalError != "wallet locked" {
		t.Fatalf("fatal error: got %q", sessions[0].FatalError)
	}
}

func TestRecorderPersistsWorkerEvents(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	started := time.Now().UTC()

	if err := store.BeginSession(ctx, "session-1", started); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}

	recorder := ledger.NewRecorder(store, nil)
	recorder.Publish(miner.Event{
		Type: miner.EventAddressResolved, Source: miner.SourceWorker,
		SessionID: "session-1", Address: "aeg1qrecorded", Timestamp: started,
	})
	recorder.Publish(miner.Event{
		Type: miner.EventBlockMined, Source: miner.SourceWorker,
		SessionID: "session-1", BlocksMined: 1, BlockHash: "h1", Timestamp: started,
	})
	// Poller events must not touch the ledger.
	recorder.Publish(miner.Event{
		Type: miner.EventInfoUpdated, Source: miner.SourcePoller,
		Info: &aegisum.MiningInfo{Chain: "main"}, Timestamp: started,
	})
	// A fatal error closes the session.
	recorder.Publish(miner.Event{
		Type: miner.EventMiningError, Source: miner.SourceWorker,
		SessionID: "session-1", Message: "wallet locked", Retriable: false,
		Timestamp: started.Add(time.Second),
	})

	sessions, err := store.Sessions(ctx, 1)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	record := sessions[0]
	if record.WalletAddress != "aeg1qrecorded" {
		t.Fatalf("address: got %q", record.WalletAddress)
	}
	if record.BlocksMined != 1 {
		t.Fatalf("blocks: got %d", record.BlocksMined)
	}
	if record.Running() {
		t.Fatal("expected closed session after fatal error")
	}
	if record.FatalError != "wallet locked" {
		t.Fatalf("fatal error: got %q", record.FatalError)
	}
}

func TestRetriableErrorsDoNotCloseSession(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.BeginSession(ctx, "session-1", time.Now().UTC()); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	recorder := ledger.NewRecorder(store, nil)
	recorder.Publish(miner.Event{
		Type: miner.EventMiningError, Source: miner.SourceWorker,
		SessionID: "session-1", Message: "node busy", Retriable: true,
		Timestamp: time.Now().UTC(),
	})

	sessions, err := store.Sessions(ctx, 1)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if !sessions[0].Running() {
		t.Fatal("retriable error must not close the session")
	}
}
