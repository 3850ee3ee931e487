package app

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/pinchcursor/internal/pointer"
)

// DefaultHandlerTimeout bounds one sink call.
const DefaultHandlerTimeout = 5 * time.Second

// Selection is one resolved charge.
type Selection struct {
	ID         string         `json:"id"`
	SessionID  string         `json:"session_id"`
	Correct    bool           `json:"correct"`
	Position   pointer.Target `json:"position"`
	ChargeTime time.Duration  `json:"charge_time"`
	At         time.Time      `json:"at"`
}

// Sink receives selections off the tick loop.
type Sink interface {
	HandleSelection(ctx context.Context, s Selection) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, s Selection) error

func (f SinkFunc) HandleSelection(ctx context.Context, s Selection) error { return f(ctx, s) }

// Dispatcher hands selections to its sinks on a separate goroutine. Publish
// never blocks: when the queue is full the selection is dropped and logged.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	queue   chan Selection

	mu     sync.RWMutex
	closed bool
	done   chan struct{}

	handled atomic.Uint64
	dropped atomic.Uint64
	failed  atomic.Uint64
}

// NewDispatcher starts a dispatcher with a queue of size entries.
func NewDispatcher(size int, sinks ...Sink) *Dispatcher {
	if size < 1 {
		size = 1
	}
	d := &Dispatcher{
		sinks:   sinks,
		timeout: DefaultHandlerTimeout,
		queue:   make(chan Selection, size),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish queues s. It reports false if s was dropped.
func (d *Dispatcher) Publish(s Selection) bool {
	logSelection(s)

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped.Add(1)
		return false
	}

	select {
	case d.queue <- s:
		return true
	default:
		d.dropped.Add(1)
		log.Printf("Selection queue full, dropping %s", s.ID)
		return false
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for s := range d.queue {
		for _, sink := range d.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			if err := sink.HandleSelection(ctx, s); err != nil {
				d.failed.Add(1)
				log.Printf("Selection handler failed: %v", err)
			}
			cancel()
		}
		d.handled.Add(1)
	}
}

// Close stops accepting selections and waits until the queued ones are
// handled.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

// DispatchStats counts dispatcher traffic.
type DispatchStats struct {
	Handled uint64 `json:"handled"`
	Dropped uint64 `json:"dropped"`
	Failed  uint64 `json:"failed"`
}

// Stats returns the counters.
func (d *Dispatcher) Stats() DispatchStats {
	return DispatchStats{
		Handled: d.handled.Load(),
		Dropped: d.dropped.Load(),
		Failed:  d.failed.Load(),
	}
}
