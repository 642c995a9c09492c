// Package broadcast fans trade-opening signals out to in-process
// subscribers. Delivery is best effort: a subscriber whose buffer is full
// misses the signal instead of blocking the engine.
package broadcast

import (
	"sync"
	"sync/atomic"

	"github.com/rustyeddy/torb/strategies/torb"
)

type Hub struct {
	mu      sync.RWMutex
	subs    map[int]chan torb.Signal
	nextID  int
	dropped atomic.Uint64
	closed  bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan torb.Signal)}
}

// Subscribe returns a channel receiving published signals and a function
// that unsubscribes and closes it.
func (h *Hub) Subscribe(buffer int) (<-chan torb.Signal, func()) {
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan torb.Signal, buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	sid := h.nextID
	h.nextID++
	h.subs[sid] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[sid]; ok {
				delete(h.subs, sid)
				close(c)
			}
		})
	}
}

// Publish delivers sig to every subscriber without blocking.
func (h *Hub) Publish(sig torb.Signal) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- sig:
		default:
			h.dropped.Add(1)
		}
	}
}

// Dropped reports how many deliveries were skipped because a subscriber
// was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close closes every subscriber channel. Later subscribers get a closed
// channel and later publishes are dropped silently.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sid, ch := range h.subs {
		delete(h.subs, sid)
		close(ch)
	}
}
