package tabsync

import (
	"context"
	"sync"
)

// MemoryBus is an in-process Bus: every Handle is one "tab", and a message
// published through one handle is delivered synchronously to all others.
// Used by tests and single-process embeddings.
type MemoryBus struct {
	mu      sync.Mutex
	handles map[*Handle]struct{}
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handles: make(map[*Handle]struct{})}
}

// Handle is one tab's attachment to a MemoryBus.
type Handle struct {
	bus *MemoryBus

	mu      sync.Mutex
	subs    map[int]func(Message)
	nextSub int
	closed  bool
}

// Join attaches a new tab to the bus.
func (b *MemoryBus) Join() *Handle {
	h := &Handle{bus: b, subs: make(map[int]func(Message))}
	b.mu.Lock()
	b.handles[h] = struct{}{}
	b.mu.Unlock()
	return h
}

func (h *Handle) Publish(ctx context.Context, msg Message) error {
	h.bus.mu.Lock()
	others := make([]*Handle, 0, len(h.bus.handles))
	for other := range h.bus.handles {
		if other != h {
			others = append(others, other)
		}
	}
	h.bus.mu.Unlock()

	for _, other := range others {
		other.deliver(msg)
	}
	return nil
}

func (h *Handle) deliver(msg Message) {
	h.mu.Lock()
	fns := make([]func(Message), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(msg)
	}
}

func (h *Handle) Subscribe(fn func(Message)) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

func (h *Handle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.subs = make(map[int]func(Message))
	h.mu.Unlock()

	h.bus.mu.Lock()
	delete(h.bus.handles, h)
	h.bus.mu.Unlock()
	return nil
}
