// Package queue buffers outbound viewer events between producers and the
// dispatch workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/runboard/internal/domain/model"
	"github.com/okian/runboard/pkg/metrics"
)

const defaultCapacity = 10000

// Event is the payload flowing through the queue.
type Event = model.Event

// Queue provides non-blocking enqueue and channel-based dequeue.
type Queue interface {
	// TryEnqueue adds e or reports why it could not.
	TryEnqueue(ctx context.Context, e Event) error

	// Enqueue adds e and returns false when it was dropped.
	Enqueue(ctx context.Context, e Event) bool

	// Dequeue returns a channel of events. It closes after Close once
	// the buffer is drained.
	Dequeue(ctx context.Context) <-chan Event

	// Len returns the number of buffered events.
	Len() int

	// Close stops accepting events.
	Close() error

	// IsClosed reports whether Close was called.
	IsClosed() bool
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	events   chan Event
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a bounded queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan Event, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)
	return q
}

// TryEnqueue adds e without blocking.
func (q *InMemoryQueue) TryEnqueue(ctx context.Context, e Event) error { //nolint:gocritic // hugeParam: events travel by value
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.recordFailure("closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		q.recordFailure("context_cancelled")
		return err
	}

	select {
	case q.events <- e:
		metrics.RecordQueueEnqueue()
		q.updateGauges()
		return nil
	default:
		q.recordFailure("queue_full")
		return ErrFull
	}
}

// Enqueue adds e without blocking and returns false when it was dropped.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Event) bool { //nolint:gocritic // hugeParam: events travel by value
	return q.TryEnqueue(ctx, e) == nil
}

// Dequeue returns a channel fed from the buffer until it is closed and
// drained or ctx ends.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		for e := range q.events {
			select {
			case out <- e:
				metrics.RecordQueueDequeue()
				q.updateGauges()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the number of buffered events.
func (q *InMemoryQueue) Len() int {
	q.updateGauges()
	return len(q.events)
}

// Capacity returns the buffer size.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Close stops accepting events. Buffered events remain readable. Calling
// Close twice is safe.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.events)
	q.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) updateGauges() {
	size := len(q.events)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

func (q *InMemoryQueue) recordFailure(reason string) {
	metrics.RecordQueueEnqueueError()
	metrics.RecordErrorByComponent("queue", reason)
}
