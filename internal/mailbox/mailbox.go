// Package mailbox provides a single-slot, latest-value-wins handoff between
// a producer and a consumer running at different rates.
package mailbox

import (
	"sync"
	"sync/atomic"
)

// Stats counts mailbox traffic.
type Stats struct {
	Offered  uint64 `json:"offered"`
	Dropped  uint64 `json:"dropped"`
	Received uint64 `json:"received"`
}

// Latest holds at most one value. Offer replaces an unread value instead of
// waiting, and Poll never waits for one. The zero value is ready to use.
type Latest[T any] struct {
	mu    sync.Mutex
	value T
	full  bool

	offered  atomic.Uint64
	dropped  atomic.Uint64
	received atomic.Uint64
}

// New returns an empty mailbox.
func New[T any]() *Latest[T] {
	return &Latest[T]{}
}

// Offer stores v, discarding any value the consumer has not read yet. It
// reports whether a value was discarded.
func (l *Latest[T]) Offer(v T) (dropped bool) {
	l.mu.Lock()
	dropped = l.full
	l.value = v
	l.full = true
	l.mu.Unlock()

	l.offered.Add(1)
	if dropped {
		l.dropped.Add(1)
	}
	return dropped
}

// Poll takes the stored value. ok is false if the slot is empty.
func (l *Latest[T]) Poll() (v T, ok bool) {
	l.mu.Lock()
	if !l.full {
		l.mu.Unlock()
		return v, false
	}
	v = l.value
	var zero T
	l.value = zero
	l.full = false
	l.mu.Unlock()

	l.received.Add(1)
	return v, true
}

// Stats returns a snapshot of the counters.
func (l *Latest[T]) Stats() Stats {
	return Stats{
		Offered:  l.offered.Load(),
		Dropped:  l.dropped.Load(),
		Received: l.received.Load(),
	}
}
