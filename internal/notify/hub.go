package notify

import (
	"sync"

	"github.com/jpalmerr/flightdeck/flight"
)

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 100

// Hub is an in-process [Publisher] that fans events out to subscribers.
//
// Subscribers receive events via buffered channels (buffer size 100). Sends
// are non-blocking; if a subscriber's buffer is full, the event is dropped
// for that subscriber so a slow client cannot stall a scan or a request.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan flight.Event]struct{}
}

// NewHub creates an empty [Hub].
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan flight.Event]struct{}),
	}
}

// Publish delivers ev to every current subscriber.
func (h *Hub) Publish(ev flight.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			// subscriber is slow, drop the event
		}
	}
}

// Subscribe creates a new subscription and returns a channel for receiving
// events.
//
// Caller must call [Hub.Unsubscribe] when done to prevent resource leaks.
func (h *Hub) Subscribe() <-chan flight.Event {
	ch := make(chan flight.Event, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
// Safe to call multiple times or with an unknown channel.
func (h *Hub) Unsubscribe(ch <-chan flight.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for subCh := range h.subscribers {
		if subCh == ch {
			delete(h.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// Close unsubscribes everyone, closing their channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subscribers {
		delete(h.subscribers, ch)
		close(ch)
	}
}

// Count returns the number of active subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
