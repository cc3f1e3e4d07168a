package events

import (
	"context"
	"sync"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// asyncDispatcher runs handlers on a detached goroutine. Publishing never
// blocks on handler completion and handler errors or panics never reach the
// publisher: the triggering operation must not depend on what subscribers do.
type asyncDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
}

// NewAsyncDispatcher creates a dispatcher instance.
func NewAsyncDispatcher() Dispatcher {
	return &asyncDispatcher{
		listeners: make(map[EventType][]EventHandler),
	}
}

// Publish invokes handlers for the given event on a background goroutine.
// The handler context is detached from the caller's cancellation so that an
// ending HTTP request does not abort in-flight notification work.
func (d *asyncDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}

	detached := context.WithoutCancel(ctx)
	go func() {
		for _, handler := range handlers {
			runHandler(detached, handler, event)
		}
	}()
	return nil
}

func runHandler(ctx context.Context, handler EventHandler, event Event) {
	defer func() {
		_ = recover()
	}()
	_ = handler(ctx, event)
}

// Subscribe registers a handler for the given event type.
func (d *asyncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}
