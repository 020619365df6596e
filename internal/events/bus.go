// Package events carries typed in-process notifications between components.
package events

import (
	"context"
	"log/slog"
	"sync"
)

// Topic names an event stream.
type Topic string

// Event is implemented by every payload published on the bus.
type Event interface {
	Topic() Topic
}

// Handler receives events for a subscribed topic.
type Handler func(ctx context.Context, evt Event)

type subscription struct {
	id      uint64
	topic   Topic
	handler Handler
}

// Bus dispatches events synchronously to subscribers in registration order.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
	logger *slog.Logger
}

// NewBus constructs an empty bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Subscribe registers handler for topic. An empty topic receives every event.
// The returned function removes the subscription.
func (b *Bus) Subscribe(topic Topic, handler Handler) func() {
	if b == nil || handler == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, topic: topic, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, sub := range b.subs {
				if sub.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// SubscribeAll registers handler for every topic.
func (b *Bus) SubscribeAll(handler Handler) func() {
	return b.Subscribe("", handler)
}

// Publish delivers evt to matching subscribers. A panicking subscriber is logged and skipped.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	if b == nil || evt == nil {
		return
	}
	topic := evt.Topic()
	b.mu.RLock()
	targets := make([]Handler, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.topic == "" || sub.topic == topic {
			targets = append(targets, sub.handler)
		}
	}
	b.mu.RUnlock()

	for _, handler := range targets {
		b.dispatch(ctx, topic, handler, evt)
	}
}

func (b *Bus) dispatch(ctx context.Context, topic Topic, handler Handler, evt Event) {
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Error("event subscriber panicked", slog.String("topic", string(topic)), slog.Any("panic", rec))
		}
	}()
	handler(ctx, evt)
}

// On subscribes a handler typed to a concrete payload. T must report its topic from a zero value.
func On[T Event](b *Bus, fn func(ctx context.Context, evt T)) func() {
	var zero T
	return b.Subscribe(zero.Topic(), func(ctx context.Context, evt Event) {
		if typed, ok := evt.(T); ok {
			fn(ctx, typed)
		}
	})
}
