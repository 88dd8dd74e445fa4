// Package events provides the in-process publish/subscribe bus that decouples
// view components from the application state. Dispatch is synchronous and
// single-threaded: handlers run inline, in registration order, on the
// publishing goroutine. There is no buffering and no replay.
package events

import (
	"log/slog"
	"strings"
	"sync"
)

// Topic identifies a channel on the bus. The closed set of topics lives with
// the domain event types.
type Topic string

// Event is a payload published on the bus. Each topic has exactly one payload
// type implementing this interface.
type Event interface {
	Topic() Topic
}

// Handler consumes published events.
type Handler func(Event)

type subscriber struct {
	id      uint64
	pattern string
	handler Handler
}

// Bus fans events out to subscribers. A publish with no matching subscribers
// is a no-op.
type Bus struct {
	mu     sync.RWMutex
	log    *slog.Logger
	subs   []subscriber
	nextID uint64
}

// New creates an event bus. Handler panics are logged through log.
func New(log *slog.Logger) *Bus {
	return &Bus{log: log}
}

// Subscription is the token returned by Subscribe; Cancel removes the
// handler from the bus.
type Subscription struct {
	bus *Bus
	id  uint64
}

// Cancel unsubscribes the handler. Safe to call more than once.
func (s Subscription) Cancel() {
	if s.bus == nil {
		return
	}
	s.bus.remove(s.id)
}

// Subscribe registers handler for exactly topic.
func (b *Bus) Subscribe(topic Topic, handler Handler) Subscription {
	return b.add(string(topic), handler)
}

// SubscribeMatch registers handler for every topic matching pattern. A
// pattern is either a literal topic or a prefix followed by "*", e.g.
// "basket:*". Matching handlers are invoked in registration order together
// with exact subscribers.
func (b *Bus) SubscribeMatch(pattern string, handler Handler) Subscription {
	return b.add(pattern, handler)
}

func (b *Bus) add(pattern string, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs = append(b.subs, subscriber{id: b.nextID, pattern: pattern, handler: handler})
	return Subscription{bus: b, id: b.nextID}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers event to every matching subscriber, in registration
// order. A panicking handler is recovered and logged; the remaining handlers
// still run. One broken view must never take down the rest of the UI.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	matched := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if topicMatches(s.pattern, event.Topic()) {
			matched = append(matched, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range matched {
		b.dispatch(h, event)
	}
}

func (b *Bus) dispatch(h Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked", "topic", string(event.Topic()), "panic", r)
		}
	}()
	h(event)
}

func topicMatches(pattern string, topic Topic) bool {
	if pattern == string(topic) {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(string(topic), pattern[:len(pattern)-1])
	}
	return false
}
