package pipeline

import (
	"sync"
	"sync/atomic"
)

// DefaultCapacity is the queue size used when Options.Capacity is zero.
const DefaultCapacity = 100

// Queue is a bounded FIFO that never blocks. When full, Push evicts the
// oldest entry to make room, so a slow consumer sees the freshest data.
//
// Push is intended for a single producer and Drain for a single consumer;
// the two may run concurrently.
type Queue[T any] struct {
	mu      sync.Mutex // serialises Push against Drain
	ch      chan T
	dropped atomic.Uint64
}

// NewQueue returns a queue holding at most capacity entries. A capacity
// below one is raised to one.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{ch: make(chan T, capacity)}
}

// Push appends v, evicting the oldest entry if the queue is full. It
// reports whether an entry was evicted.
func (q *Queue[T]) Push(v T) (evicted bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	// Only Push sends and it holds mu, so a full queue stays full until the
	// head is removed here.
	if len(q.ch) == cap(q.ch) {
		<-q.ch
		q.dropped.Add(1)
		evicted = true
	}
	q.ch <- v
	return evicted
}

// Drain removes and returns every queued entry in arrival order. It returns
// nil when the queue is empty.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []T
	for {
		select {
		case v := <-q.ch:
			out = append(out, v)
		default:
			return out
		}
	}
}

// Len returns the number of queued entries.
func (q *Queue[T]) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int { return cap(q.ch) }

// Dropped returns the number of entries evicted so far.
func (q *Queue[T]) Dropped() uint64 { return q.dropped.Load() }
