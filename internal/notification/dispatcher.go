// AngelaMos | 2026
// dispatcher.go

package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/stackit/internal/config"
	"github.com/carterperez-dev/stackit/internal/core"
)

// Store persists a delivered notification.
type Store interface {
	Create(ctx context.Context, n *Notification) error
}

// Publisher fans a persisted notification out to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, n *Notification) error
}

type Stats struct {
	Enqueued   uint64 `json:"enqueued"`
	Suppressed uint64 `json:"suppressed"`
	Dropped    uint64 `json:"dropped"`
	Persisted  uint64 `json:"persisted"`
	Failed     uint64 `json:"failed"`
	QueueDepth int    `json:"queue_depth"`
}

const defaultWriteTimeout = 5 * time.Second

// Dispatcher delivers notifications on a bounded queue drained by a fixed
// worker pool. Delivery failures are logged and never reach the caller.
type Dispatcher struct {
	store     Store
	publisher Publisher
	cfg       config.NotificationConfig
	logger    *slog.Logger

	queue  chan Event
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool

	enqueued   atomic.Uint64
	suppressed atomic.Uint64
	dropped    atomic.Uint64
	persisted  atomic.Uint64
	failed     atomic.Uint64
}

// NewDispatcher starts cfg.Workers workers. publisher may be nil.
func NewDispatcher(
	store Store,
	publisher Publisher,
	cfg config.NotificationConfig,
	logger *slog.Logger,
) *Dispatcher {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dispatcher{
		store:     store,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger.With("component", "notification_dispatcher"),
		queue:     make(chan Event, cfg.QueueSize),
	}

	d.wg.Add(cfg.Workers)
	for range cfg.Workers {
		go d.work()
	}

	return d
}

// Notify enqueues ev. When the queue is full it waits at most the configured
// enqueue timeout and then drops the event. A zero timeout never waits.
func (d *Dispatcher) Notify(ctx context.Context, ev Event) {
	if ev.Recipient == "" || ev.Recipient == ev.Sender {
		d.suppressed.Add(1)
		return
	}
	if !ev.Type.Valid() {
		d.dropped.Add(1)
		d.logger.Warn("notification dropped: unknown type",
			"type", ev.Type,
			"recipient_id", ev.Recipient,
		)
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		d.logger.Warn("notification dropped: dispatcher closed",
			"type", ev.Type,
			"recipient_id", ev.Recipient,
		)
		return
	}

	select {
	case d.queue <- ev:
		d.enqueued.Add(1)
		return
	default:
	}

	if d.cfg.EnqueueTimeout <= 0 {
		d.dropQueueFull(ev)
		return
	}

	timer := time.NewTimer(d.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case d.queue <- ev:
		d.enqueued.Add(1)
	case <-timer.C:
		d.dropQueueFull(ev)
	case <-ctx.Done():
		d.dropped.Add(1)
		d.logger.Warn("notification dropped: request cancelled",
			"type", ev.Type,
			"recipient_id", ev.Recipient,
		)
	}
}

func (d *Dispatcher) dropQueueFull(ev Event) {
	d.dropped.Add(1)
	d.logger.Warn("notification dropped: queue full",
		"type", ev.Type,
		"recipient_id", ev.Recipient,
		"queue_size", d.cfg.QueueSize,
	)
}

// Close stops accepting events and waits for queued ones to be delivered
// or for ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain notifications: %w (%d queued)", ctx.Err(), len(d.queue))
	}
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Enqueued:   d.enqueued.Load(),
		Suppressed: d.suppressed.Load(),
		Dropped:    d.dropped.Load(),
		Persisted:  d.persisted.Load(),
		Failed:     d.failed.Load(),
		QueueDepth: len(d.queue),
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for ev := range d.queue {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.WriteTimeout)
	defer cancel()

	ctx, span := core.StartSpan(ctx, "notification.deliver",
		attribute.String("notification.type", string(ev.Type)),
		attribute.String("notification.recipient_id", ev.Recipient),
	)

	n := ev.toNotification(core.NewID())
	if err := d.store.Create(ctx, n); err != nil {
		d.failed.Add(1)
		d.logger.Error("notification persist failed",
			"error", err,
			"type", ev.Type,
			"recipient_id", ev.Recipient,
		)
		core.EndSpan(span, err)
		return
	}
	d.persisted.Add(1)

	if d.publisher != nil {
		if err := d.publisher.Publish(ctx, n); err != nil {
			d.logger.Warn("notification publish failed",
				"error", err,
				"notification_id", n.ID,
			)
		}
	}

	core.EndSpan(span, nil)
}
