package usage

import (
	"context"
	"log/slog"
	"sync"
)

// DefaultQueueSize is the capacity used when none is configured.
const DefaultQueueSize = 1024

// Sink delivers usage events.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Queue buffers events in a bounded channel drained by one background
// consumer. Enqueue never blocks: events that do not fit are dropped.
type Queue struct {
	sink   Sink
	events chan Event
	done   chan struct{}
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

// NewQueue starts a queue of the given capacity in front of sink.
func NewQueue(sink Sink, size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}

	q := &Queue{
		sink:   sink,
		events: make(chan Event, size),
		done:   make(chan struct{}),
	}

	go q.run()

	return q
}

// Enqueue hands ev to the consumer. It reports whether the event was accepted.
func (q *Queue) Enqueue(ev Event) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		slog.Warn("Usage queue closed, dropping event", "id", ev.ID, "task", ev.Task)
		return false
	}

	select {
	case q.events <- ev:
		return true
	default:
		slog.Warn("Usage queue full, dropping event", "id", ev.ID, "task", ev.Task)
		return false
	}
}

func (q *Queue) run() {
	defer close(q.done)

	for ev := range q.events {
		if err := q.sink.Publish(context.Background(), ev); err != nil {
			slog.Error("Failed to publish usage event", "id", ev.ID, "task", ev.Task, "error", err)
		}
	}
}

// Close stops accepting events and waits until the buffered ones are
// published or ctx is done, then closes the sink.
func (q *Queue) Close(ctx context.Context) error {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.events)
		q.mu.Unlock()
	})

	select {
	case <-q.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return q.sink.Close()
}
