// Package bus provides the in-process event bus broadcasting domain events
// to independent subscribers. Publishing never blocks: a subscriber that
// falls behind its bounded buffer misses events, and publishing with zero
// subscribers is a successful no-op.
package bus

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 16

// Publisher is the sending side of the bus, the only surface the engine
// components need.
type Publisher interface {
	Publish(evt Event)
}

// Bus is a broadcast channel for domain events. Safe for one or more
// publishers and multiple independent subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	closed bool
}

// New creates a Bus with the default per-subscriber buffer.
func New() *Bus {
	return NewWithBuffer(DefaultBuffer)
}

// NewWithBuffer creates a Bus with an explicit per-subscriber buffer size.
func NewWithBuffer(buffer int) *Bus {
	if buffer < 1 {
		buffer = 1
	}
	return &Bus{
		subs:   make(map[uint64]*Subscription),
		buffer: buffer,
	}
}

// Publish broadcasts evt to every live subscriber. The event time is
// stamped here when unset. Full subscriber buffers drop the event.
func (b *Bus) Publish(evt Event) {
	if evt.Time.IsZero() {
		evt.Time = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, sub := range b.subs {
		select {
		case sub.ch <- evt:
		default:
			// Subscriber lagging; lossy by contract.
		}
	}
}

// Subscribe returns an independent receive handle. The caller must drain
// Events() or accept missed events; Unsubscribe releases the handle.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:  b.nextID,
		ch:  make(chan Event, b.buffer),
		bus: b,
	}
	if b.closed {
		sub.done.Store(true)
		close(sub.ch)
		return sub
	}
	b.subs[sub.id] = sub
	return sub
}

// Close shuts the bus down and closes every subscriber channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		if !sub.done.Swap(true) {
			close(sub.ch)
		}
	}
}

// Subscription is one independent receive handle on a Bus.
type Subscription struct {
	id   uint64
	ch   chan Event
	bus  *Bus
	done atomic.Bool
}

// Events returns the receive channel. It is closed by Unsubscribe or by
// closing the bus.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Unsubscribe detaches the handle and closes its channel. Safe to call
// more than once.
func (s *Subscription) Unsubscribe() {
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()

	if !s.done.Swap(true) {
		close(s.ch)
	}
}
