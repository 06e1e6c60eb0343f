package core

import (
	"sync"

	"github.com/soulified/warden/internal/constants"
)

// EventBus fans observability events out to the TUI, the status feed and
// tests. Publishing never blocks: a subscriber that stops draining loses
// events rather than stalling the session loop.
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan Event
	bufferSize  int
}

// NewEventBus creates a bus whose subscriber channels buffer bufferSize
// events, clamped to a floor so a burst around reconnect still fits.
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize < constants.MinEventBusBufferSize {
		bufferSize = constants.MinEventBusBufferSize
	}
	return &EventBus{
		bufferSize: bufferSize,
	}
}

// Subscribe registers a new listener. The channel stays open until
// Unsubscribe or Close; the listener has to keep draining it.
func (b *EventBus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.bufferSize)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Unsubscribe detaches a listener and closes its channel. Unknown channels
// are ignored.
func (b *EventBus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub == ch {
			close(sub)
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			return
		}
	}
}

// Publish delivers event to every subscriber with room in its buffer and
// skips the rest.
func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			// Full buffer; this subscriber misses the event.
		}
	}
}

// Close closes every subscriber channel and empties the bus.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}
