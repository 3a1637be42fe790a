package chat

import "sync"

// LocalBus delivers events to in-process subscribers. Dispatch is
// synchronous under the bus lock, so per-room delivery order matches
// publish order.
type LocalBus struct {
	mu          sync.Mutex
	subscribers map[string]map[int]func(Event)
	nextID      int
	closed      bool
}

// NewLocalBus creates an in-process bus.
func NewLocalBus() *LocalBus {
	return &LocalBus{subscribers: make(map[string]map[int]func(Event))}
}

// Publish invokes every handler subscribed to the room. Handlers run
// outside the bus lock so they may resubscribe or cancel freely.
func (b *LocalBus) Publish(room string, event Event) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	handlers := make([]func(Event), 0, len(b.subscribers[room]))
	for _, handler := range b.subscribers[room] {
		handlers = append(handlers, handler)
	}
	b.mu.Unlock()

	for _, handler := range handlers {
		handler(event)
	}
	return nil
}

// Subscribe registers a handler for a room.
func (b *LocalBus) Subscribe(room string, handler func(Event)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subscribers[room] == nil {
		b.subscribers[room] = make(map[int]func(Event))
	}
	id := b.nextID
	b.nextID++
	b.subscribers[room][id] = handler

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers[room], id)
		if len(b.subscribers[room]) == 0 {
			delete(b.subscribers, room)
		}
	}
	return cancel, nil
}

// Close drops all subscriptions.
func (b *LocalBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subscribers = make(map[string]map[int]func(Event))
}
