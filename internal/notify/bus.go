package notify

import (
	"context"
	"errors"
	"sync"

	"taskboard/internal/models"
)

const defaultBufferSize = 64

// ErrBusClosed is returned by Emit after Close.
var ErrBusClosed = errors.New("event bus closed")

// Subscription receives events published on a Bus.
type Subscription struct {
	id int
	ch chan models.TaskEvent
}

// Ch returns the channel to receive events on. It is closed on Unsubscribe
// or when the bus closes.
func (s *Subscription) Ch() <-chan models.TaskEvent {
	return s.ch
}

// Bus is an in-process fan-out of task events. Sends are non-blocking:
// a subscriber with a full buffer misses the event.
type Bus struct {
	mu         sync.RWMutex
	subs       map[int]*Subscription
	nextID     int
	bufferSize int
	closed     bool
}

// NewBus creates a Bus whose subscriptions buffer bufferSize events.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Bus{
		subs:       make(map[int]*Subscription),
		bufferSize: bufferSize,
	}
}

// Subscribe registers a new subscriber.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{id: b.nextID, ch: make(chan models.TaskEvent, b.bufferSize)}
	if b.closed {
		close(sub.ch)
		return sub
	}
	b.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub.id]; ok {
		delete(b.subs, sub.id)
		close(sub.ch)
	}
}

// Emit publishes ev to every subscriber.
func (b *Bus) Emit(_ context.Context, ev models.TaskEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}
	for _, sub := range b.subs {
		select {
		case sub.ch <- ev:
		default:
		}
	}
	return nil
}

// Close closes all subscriptions. Further emits fail with ErrBusClosed.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, id)
	}
}
