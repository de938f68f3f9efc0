package miner_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"aegminer/internal/miner"
	"aegminer/internal/services/aegisum"
)

// fakeClient scripts wallet node CLI behaviour per call.
type fakeClient struct {
	mu sync.Mutex

	address string
	addrErr error

	// genScript returns the error for the nth generatetoaddress call
	// (1-based); nil means success.
	genScript func(call int) error
	genCalls  int

	infoErr    error
	info       aegisum.MiningInfo
	balance    float64
	balanceErr error
}

func (f *fakeClient) GetNewAddress(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addrErr != nil {
		return "", f.addrErr
	}
	if f.address == "" {
		f.address = "aeg1qtestaddress"
	}
	return f.address, nil
}

func (f *fakeClient) GenerateToAddress(ctx context.Context, n int, address string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.genCalls++
	if f.genScript != nil {
		if err := f.genScript(f.genCalls); err != nil {
			return nil, err
		}
	}
	return []string{fmt.Sprintf("0000hash%04d", f.genCalls)}, nil
}

func (f *fakeClient) GetMiningInfo(ctx context.Context) (aegisum.MiningInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.infoErr != nil {
		return aegisum.MiningInfo{}, f.infoErr
	}
	if f.info.Chain == "" {
		f.info = aegisum.MiningInfo{Blocks: 100, Difficulty: 0.01, NetworkHashPS: 5000, Chain: "main"}
	}
	return f.info, nil
}

func (f *fakeClient) GetBalance(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balanceErr != nil {
		return 0, f.balanceErr
	}
	return f.balance, nil
}

// chanSink forwards every published event to a channel so tests can assert
// ordered delivery with timeouts.
type chanSink struct {
	ch chan miner.Event
}

func newChanSink() *chanSink {
	return &chanSink{ch: make(chan miner.Event, 256)}
}

func (s *chanSink) Publish(evt miner.Event) {
	select {
	case s.ch <- evt:
	default:
	}
}

func (s *chanSink) next(t *testing.T) miner.Event {
	t.Helper()
	select {
	case evt := <-s.ch:
		return evt
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return miner.Event{}
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}
