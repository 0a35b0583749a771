package bus

import (
	"context"
	"sync"

	"github.com/ayo6706/bank-transfer-saga/internal/domain"
	"github.com/ayo6706/bank-transfer-saga/internal/observability"
)

// EventHandler reacts to one published event. Handlers must tolerate
// duplicate delivery; the bus guarantees at-least-once, in emission order.
type EventHandler func(ctx context.Context, evt domain.Event)

// EventBus delivers published events to subscribers interested in their
// type. Delivery is synchronous on the publishing goroutine, which preserves
// emission order for events sharing a correlation key.
type EventBus struct {
	mu   sync.RWMutex
	subs map[string][]EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[string][]EventHandler)}
}

// Subscribe registers handler for the named event types.
func (b *EventBus) Subscribe(handler EventHandler, names ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, name := range names {
		b.subs[name] = append(b.subs[name], handler)
	}
}

// Publish delivers each event to every subscriber of its type, in order.
func (b *EventBus) Publish(ctx context.Context, events ...domain.Event) {
	for _, evt := range events {
		b.mu.RLock()
		handlers := b.subs[evt.EventName()]
		b.mu.RUnlock()

		observability.IncrementEventPublished(evt.EventName())
		for _, handler := range handlers {
			handler(ctx, evt)
		}
	}
}
