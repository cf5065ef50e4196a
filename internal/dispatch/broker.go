package dispatch

import (
	"sync"
	"time"

	"github.com/foldlab/foldd/internal/model"
)

// subscriberBufferSize is the channel buffer for each completion subscriber.
// Events are dropped if a subscriber falls this far behind.
const subscriberBufferSize = 64

// CompletionEvent is published once per successfully completed job. It
// carries everything a downstream mirror needs without reading the store.
type CompletionEvent struct {
	JobID       string
	Input       model.JobInput
	Artifact    []byte
	Energy      *float64
	CompletedAt time.Time
}

// Broker fans completion events out to subscribers. It is safe for
// concurrent use. Delivery is best-effort: a slow subscriber loses events
// rather than blocking the worker that published them.
type Broker struct {
	mu     sync.Mutex
	subs   map[int]chan CompletionEvent
	nextID int
	closed bool
}

// NewBroker creates a completion-event broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan CompletionEvent)}
}

// Subscribe returns a channel of completion events and an unsubscribe
// function. After Close, the returned channel is immediately closed.
func (b *Broker) Subscribe() (<-chan CompletionEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan CompletionEvent, subscriberBufferSize)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
}

// Publish delivers the event to all subscribers, dropping it for any whose
// buffer is full.
func (b *Broker) Publish(ev CompletionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Drop for slow subscribers to avoid blocking workers.
		}
	}
}

// Close shuts the broker down; all subscriber channels are closed and
// subsequent publishes are discarded.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}
