package events

import (
	"context"
	"sync"
)

// Hub is the in-process pub/sub used by the live dashboard stream. Every
// subscriber owns a cancellable handle and must call Cancel when its scope
// ends, otherwise the hub keeps delivering into a dead channel buffer.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan OrderEvent
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan OrderEvent)}
}

// Subscription is a cancellable handle on the event stream. Receive from C;
// C is closed after Cancel or when the hub shuts down.
type Subscription struct {
	C      <-chan OrderEvent
	cancel func()
	once   sync.Once
}

func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

func (h *Hub) Subscribe(buffer int) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan OrderEvent, buffer)
	if h.closed {
		close(ch)
		return &Subscription{C: ch, cancel: func() {}}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	return &Subscription{
		C: ch,
		cancel: func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if sub, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub)
			}
		},
	}
}

// PublishOrderEvent delivers to every live subscriber without blocking. A
// subscriber whose buffer is full misses the event; the dashboard stream
// re-reads the full order list per event, so a dropped event only delays a
// refresh until the next change.
func (h *Hub) PublishOrderEvent(_ context.Context, event OrderEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Close cancels every outstanding subscription.
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
