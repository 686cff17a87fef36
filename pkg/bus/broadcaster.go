// mcpid - MCP service endpoint with MCPI discovery
// License: MIT
//
// Copyright (c) 2026 mcpid contributors

// Package bus provides the per-session event broadcaster feeding SSE
// streams. One producer, N subscribers; slow subscribers lose their
// oldest buffered events instead of blocking the producer.
package bus

import (
	"log/slog"
	"sync"
)

// DefaultCapacity is the per-subscriber buffer size.
const DefaultCapacity = 32

// Event is one server-sent event.
type Event struct {
	ID   string
	Type string // SSE event name, "message" when empty
	Data string // JSON payload
}

// Broadcaster fans events out to any number of subscribers.
type Broadcaster struct {
	mu       sync.Mutex
	subs     map[int]chan Event
	nextSub  int
	capacity int
	closed   bool
	logger   *slog.Logger
	onDrop   func()
}

// NewBroadcaster creates a broadcaster with the given per-subscriber
// buffer capacity. capacity <= 0 means DefaultCapacity.
func NewBroadcaster(capacity int, logger *slog.Logger) *Broadcaster {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		subs:     make(map[int]chan Event),
		capacity: capacity,
		logger:   logger,
	}
}

// OnDrop installs a callback invoked once per dropped event, used for
// metrics. Must be set before the first Publish.
func (b *Broadcaster) OnDrop(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onDrop = fn
}

// Subscribe registers a new subscriber. The returned cancel func must
// be called when the subscriber goes away; the channel is closed by the
// broadcaster on cancel or Close.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.capacity)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextSub
	b.nextSub++
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber. It never blocks: when
// a subscriber's buffer is full its oldest event is dropped first.
// Drops are per subscriber, other subscribers still see every event.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Full buffer: drop the oldest, then retry once.
			select {
			case dropped := <-ch:
				b.logger.Warn("slow SSE subscriber, dropping event",
					"subscriber", id, "dropped_event_id", dropped.ID)
				if b.onDrop != nil {
					b.onDrop()
				}
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// SubscriberCount reports the number of live subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close terminates the broadcaster and closes all subscriber channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
