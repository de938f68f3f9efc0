package miner

import (
	"context"
	"sync"
	"time"

	"aegminer/internal/services/aegisum"
)

// EventType discriminates the payload carried by an Event.
type EventType string

const (
	EventAddressResolved EventType = "address_resolved"
	EventBlockMined      EventType = "block_mined"
	EventInfoUpdated     EventType = "info_updated"
	EventBalanceUpdated  EventType = "balance_updated"
	EventMiningError     EventType = "mining_error"
)

// Event producers.
const (
	SourceWorker = "worker"
	SourcePoller = "poller"
)

// Event is the single notification shape delivered to sinks. Type selects
// which payload fields are populated.
type Event struct {
	Sequence  uint64    `json:"seq"`
	Timestamp time.Time `json:"ts"`
	Type      EventType `json:"type"`
	Source    string    `json:"source,omitempty"`
	SessionID string    `json:"session_id,omitempty"`

	BlocksMined int64               `json:"blocks_mined,omitempty"`
	BlockHash   string              `json:"block_hash,omitempty"`
	Address     string              `json:"address,omitempty"`
	Balance     float64             `json:"balance,omitempty"`
	Info        *aegisum.MiningInfo `json:"info,omitempty"`
	Message     string              `json:"message,omitempty"`
	Retriable   bool                `json:"retriable,omitempty"`
}

// Sink receives status events. Implementations must accept delivery from
// multiple concurrent producers and must not block them indefinitely.
type Sink interface {
	Publish(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

func (f SinkFunc) Publish(evt Event) { f(evt) }

// Hub stores recent events in a bounded drop-oldest ring and wakes waiters
// when new events arrive. It also fans events out to secondary sinks.
type Hub struct {
	mu       sync.Mutex
	cond     *sync.Cond
	capacity int
	buffer   []Event
	nextSeq  uint64
	sinks    []Sink
}

// NewHub constructs a bounded in-memory event fan-out buffer.
func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = 512
	}
	h := &Hub{capacity: capacity}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// AddSink wires an additional sink that receives every published event.
func (h *Hub) AddSink(sink Sink) {
	if h == nil || sink == nil {
		return
	}
	h.mu.Lock()
	h.sinks = append(h.sinks, sink)
	h.mu.Unlock()
}

// Publish appends a new event to the hub, dropping the oldest entry when the
// ring is full.
func (h *Hub) Publish(evt Event) {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.nextSeq++
	evt.Sequence = h.nextSeq
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	if len(h.buffer) == h.capacity {
		copy(h.buffer, h.buffer[1:])
		h.buffer = h.buffer[:h.capacity-1]
	}
	h.buffer = append(h.buffer, evt)
	sinks := append([]Sink(nil), h.sinks...)
	h.cond.Broadcast()
	h.mu.Unlock()

	for _, sink := range sinks {
		sink.Publish(evt)
	}
}

// Fetch returns all buffered events with sequence greater than since. When
// wait is true, Fetch blocks until at least one event is available or the
// context ends.
func (h *Hub) Fetch(ctx context.Context, since uint64, limit int, wait bool) ([]Event, uint64, error) {
	if h == nil {
		return nil, since, nil
	}
	if limit <= 0 || limit > h.capacity {
		limit = h.capacity
	}

	cancelWait := make(chan struct{})
	if wait && ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				h.cond.Broadcast()
			case <-cancelWait:
			}
		}()
	}
	defer close(cancelWait)

	h.mu.Lock()
	defer h.mu.Unlock()

	for {
		events, next := h.snapshotLocked(since, limit)
		if len(events) > 0 || !wait {
			return events, next, nil
		}
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return nil, since, err
			}
		}
		h.cond.Wait()
	}
}

func (h *Hub) snapshotLocked(since uint64, limit int) ([]Event, uint64) {
	next := since
	var events []Event
	for _, evt := range h.buffer {
		if evt.Sequence <= since {
			continue
		}
		events = append(events, evt)
		next = evt.Sequence
		if len(events) == limit {
			break
		}
	}
	return events, next
}
