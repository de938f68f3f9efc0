package miner_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"aegminer/internal/miner"
)

func TestHubAssignsSequencesAndDropsOldest(t *testing.T) {
	hub := miner.NewHub(3)
	for i := 0; i < 5; i++ {
		hub.Publish(miner.Event{Type: miner.EventBlockMined, BlocksMined: int64(i + 1)})
	}

	events, next, err := hub.Fetch(context.Background(), 0, 10, false)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected capacity-bounded buffer, got %d events", len(events))
	}
	if events[0].Sequence != 3 || events[2].Sequence != 5 {
		t.Fatalf("expected oldest dropped: %v", events)
	}
	if next != 5 {
		t.Fatalf("cursor: got %d", next)
	}
}

func TestHubFetchFromCursor(t *testing.T) {
	hub := miner.NewHub(16)
	hub.Publish(miner.Event{Type: miner.EventBalanceUpdated, Balance: 1})
	hub.Publish(miner.Event{Type: miner.EventBalanceUpdated, Balance: 2})

	events, next, err := hub.Fetch(context.Background(), 1, 10, false)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(events) != 1 || events[0].Balance != 2 {
		t.Fatalf("expected only events past cursor, got %v", events)
	}
	if next != 2 {
		t.Fatalf("cursor: got %d", next)
	}
}

func TestHubFetchWaitWakesOnPublish(t *testing.T) {
	hub := miner.NewHub(16)

	type result struct {
		events []miner.Event
		err    error
	}
	resultCh := make(chan result, 1)
	go func() {
		events, _, err := hub.Fetch(context.Background(), 0, 10, true)
		resultCh <- result{events, err}
	}()

	time.Sleep(10 * time.Millisecond)
	hub.Publish(miner.Event{Type: miner.EventAddressResolved, Address: "aeg1q"})

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Fetch: %v", res.err)
		}
		if len(res.events) != 1 || res.events[0].Address != "aeg1q" {
			t.Fatalf("unexpected events: %v", res.events)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Fetch did not wake on publish")
	}
}

func TestHubFetchWaitHonoursContext(t *testing.T) {
	hub := miner.NewHub(16)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, _, err := hub.Fetch(ctx, 0, 10, true)
		errCh <- err
	}()

	cancel()
	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected context error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Fetch did not observe cancellation")
	}
}

func TestHubFansOutToSinks(t *testing.T) {
	hub := miner.NewHub(16)

	var mu sync.Mutex
	var seen []miner.Event
	hub.AddSink(miner.SinkFunc(func(evt miner.Event) {
		mu.Lock()
		seen = append(seen, evt)
		mu.Unlock()
	}))

	hub.Publish(miner.Event{Type: miner.EventBlockMined, BlocksMined: 1})
	hub.Publish(miner.Event{Type: miner.EventBlockMined, BlocksMined: 2})

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 {
		t.Fatalf("expected fan-out of 2 events, got %d", len(seen))
	}
	if seen[0].Sequence != 1 || seen[1].Sequence != 2 {
		t.Fatalf("expected assigned sequences in order: %v", seen)
	}
}
