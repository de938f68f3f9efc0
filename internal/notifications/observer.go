package notifications

import (
	"context"
	"log/slog"
	"time"

	"aegminer/internal/logging"
	"aegminer/internal/miner"
)

// Observer turns worker events into push notifications. Deliveries run on a
// dedicated goroutine so a slow notification endpoint never stalls event
// producers; failures are logged and never propagate.
type Observer struct {
	service       Service
	logger        *slog.Logger
	blockInterval int64
	queue         chan miner.Event
	done          chan struct{}
}

// NewObserver wires the notification service into the event stream.
// blockInterval controls how often block milestones are pushed.
func NewObserver(service Service, logger *slog.Logger, blockInterval int) *Observer {
	if logger == nil {
		logger = logging.NewNop()
	}
	interval := int64(blockInterval)
	if interval <= 0 {
		interval = 10
	}
	o := &Observer{
		service:       service,
		logger:        logger,
		blockInterval: interval,
		queue:         make(chan miner.Event, 16),
		done:          make(chan struct{}),
	}
	go o.run()
	return o
}

// Publish implements miner.Sink. Events that do not trigger a notification
// are filtered here; the rest are queued for delivery. A full queue drops
// the event rather than block the producer.
func (o *Observer) Publish(evt miner.Event) {
	if o == nil || o.service == nil || !o.wantsNotification(evt) {
		return
	}
	select {
	case o.queue <- evt:
	default:
		o.logger.Warn("notification queue full, dropping event",
			logging.Args(logging.String("event_type", string(evt.Type)))...)
	}
}

// Close stops the delivery goroutine after draining queued events. Publish
// must not be called after Close.
func (o *Observer) Close() {
	close(o.queue)
	<-o.done
}

func (o *Observer) wantsNotification(evt miner.Event) bool {
	if evt.Source != miner.SourceWorker {
		return false
	}
	switch evt.Type {
	case miner.EventAddressResolved:
		return true
	case miner.EventBlockMined:
		return evt.BlocksMined%o.blockInterval == 0
	case miner.EventMiningError:
		return !evt.Retriable
	default:
		return false
	}
}

func (o *Observer) run() {
	defer close(o.done)
	for evt := range o.queue {
		o.deliver(evt)
	}
}

func (o *Observer) deliver(evt miner.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var err error
	switch evt.Type {
	case miner.EventAddressResolved:
		err = o.service.NotifyMiningStarted(ctx, evt.Address)
	case miner.EventBlockMined:
		err = o.service.NotifyBlockMilestone(ctx, evt.BlocksMined)
	case miner.EventMiningError:
		err = o.service.NotifyError(ctx, evt.Message)
	}
	if err != nil {
		o.logger.Warn("notification delivery failed",
			logging.Args(logging.Error(err), logging.String("event_type", string(evt.Type)))...)
	}
}

var _ miner.Sink = (*Observer)(nil)
