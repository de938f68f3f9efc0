package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"aegminer/internal/metrics"
	"aegminer/internal/miner"
	"aegminer/internal/services/aegisum"
)

func TestObserverUpdatesCollectors(t *testing.T) {
	var observer metrics.Observer

	before := testutil.ToFloat64(metrics.BlocksMined)
	observer.Publish(miner.Event{Type: miner.EventBlockMined, BlocksMined: 1})
	if got := testutil.ToFloat64(metrics.BlocksMined); got != before+1 {
		t.Fatalf("blocks mined counter: got %v want %v", got, before+1)
	}

	observer.Publish(miner.Event{Type: miner.EventBalanceUpdated, Balance: 42.5})
	if got := testutil.ToFloat64(metrics.WalletBalance); got != 42.5 {
		t.Fatalf("balance gauge: got %v", got)
	}

	observer.Publish(miner.Event{Type: miner.EventInfoUpdated, Info: &aegisum.MiningInfo{
		Blocks: 18234, Difficulty: 0.5, NetworkHashPS: 9000, PooledTx: 3, Chain: "main",
	}})
	if got := testutil.ToFloat64(metrics.ChainHeight); got != 18234 {
		t.Fatalf("chain height gauge: got %v", got)
	}
	if got := testutil.ToFloat64(metrics.PooledTx); got != 3 {
		t.Fatalf("pooled tx gauge: got %v", got)
	}

	errBefore := testutil.ToFloat64(metrics.MiningErrors.WithLabelValues("true"))
	observer.Publish(miner.Event{Type: miner.EventMiningError, Retriable: true})
	if got := testutil.ToFloat64(metrics.MiningErrors.WithLabelValues("true")); got != errBefore+1 {
		t.Fatalf("error counter: got %v", got)
	}
}

func TestUpdateUptime(t *testing.T) {
	metrics.UpdateUptime()
	first := testutil.ToFloat64(metrics.UptimeSeconds)
	if first < 0 {
		t.Fatalf("uptime gauge negative: %v", first)
	}
	time.Sleep(10 * time.Millisecond)
	metrics.UpdateUptime()
	if got := testutil.ToFloat64(metrics.UptimeSeconds); got <= first {
		t.Fatalf("uptime gauge did not advance: %v -> %v", first, got)
	}
}
