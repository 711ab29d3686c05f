// Package analytics ships per-query events to Kafka and aggregates the
// events it reads back into query statistics.
package analytics

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/kafka"
)

// Publisher is implemented by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// drainTimeout bounds how long shutdown spends flushing buffered events.
const drainTimeout = 5 * time.Second

// Collector buffers events and publishes them from a single goroutine so
// that Track never blocks a search request. Events are best effort: a full
// buffer or an unreachable broker loses them, and Dropped counts the loss.
type Collector struct {
	producer Publisher
	eventCh  chan SearchEvent
	logger   *slog.Logger
	done     chan struct{}
	dropped  atomic.Int64
	failed   atomic.Int64
}

func NewCollector(producer Publisher, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer: producer,
		eventCh:  make(chan SearchEvent, bufferSize),
		logger:   slog.Default().With("component", "analytics-collector"),
		done:     make(chan struct{}),
	}
}

func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues event, dropping it when the buffer is full. Drops are
// logged at powers of two so a stalled broker does not flood the log.
func (c *Collector) Track(event SearchEvent) {
	select {
	case c.eventCh <- event:
	default:
		if n := c.dropped.Add(1); n&(n-1) == 0 {
			c.logger.Warn("analytics buffer full, dropping events", "dropped_total", n)
		}
	}
}

// Dropped is the number of events lost to a full buffer or a failed
// publish.
func (c *Collector) Dropped() int64 {
	return c.dropped.Load() + c.failed.Load()
}

// Close stops accepting events and waits for the publisher goroutine. Start
// must have been called.
func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}

func (c *Collector) publish(ctx context.Context, event SearchEvent) {
	if err := c.producer.Publish(ctx, kafka.Event{
		Key:   event.BuildID,
		Type:  string(event.Type),
		Value: event,
	}); err != nil {
		c.failed.Add(1)
		c.logger.Error("failed to publish analytics event", "build_id", event.BuildID, "error", err)
	}
}

// drainRemaining publishes what is already buffered, giving up after
// drainTimeout.
func (c *Collector) drainRemaining() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				c.dropped.Add(1)
				continue
			}
			c.publish(ctx, event)
		default:
			return
		}
	}
}
