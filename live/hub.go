// Package live fans punch events out to connected dashboards.
//
// Delivery is best effort: Publish never blocks, and a subscriber whose
// buffer is full misses the event. Nothing in the ledger depends on a
// listener receiving anything.
package live

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Event announces that someone arrived or departed.
type Event struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Action string `json:"action"`
	Time   string `json:"time"`
}

const (
	ActionArrived  = "arrived"
	ActionDeparted = "departed"
)

const defaultBuffer = 16

// Hub is a set of subscriber channels.
type Hub struct {
	mu      sync.RWMutex
	subs    map[uint64]chan Event
	nextID  uint64
	buffer  int
	closed  bool
	dropped atomic.Uint64
}

// NewHub returns a hub whose subscribers buffer up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{subs: make(map[uint64]chan Event), buffer: buffer}
}

// Subscribe registers a listener. The returned cancel func closes the
// channel and must be called once the listener is done.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

// Publish offers e to every subscriber without blocking.
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
			h.dropped.Add(1)
			slog.Debug("live: subscriber full, event dropped", "userId", e.UserID, "action", e.Action)
		}
	}
}

// Subscribers returns the number of active listeners.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns how many deliveries were skipped.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// Close disconnects every subscriber. Later subscriptions get a closed
// channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
