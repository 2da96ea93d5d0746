package memory

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"flowgraph-backend/domain/events"
)

// EventBus is an in-process publish/subscribe bus for domain events.
// Handlers run synchronously in publish order; a panicking handler is
// recovered and logged so one subscriber cannot take down a request.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]func(context.Context, events.DomainEvent)
	logger   *zap.Logger
}

// NewEventBus creates an empty event bus.
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		handlers: make(map[string][]func(context.Context, events.DomainEvent)),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event type.
func (b *EventBus) Subscribe(eventType string, handler func(context.Context, events.DomainEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish delivers the event to all subscribers of its type.
func (b *EventBus) Publish(ctx context.Context, event events.DomainEvent) error {
	b.mu.RLock()
	handlers := append([]func(context.Context, events.DomainEvent){}, b.handlers[event.GetEventType()]...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.deliver(ctx, event, handler)
	}
	return nil
}

func (b *EventBus) deliver(ctx context.Context, event events.DomainEvent, handler func(context.Context, events.DomainEvent)) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				zap.String("eventType", event.GetEventType()),
				zap.Any("panic", r),
			)
		}
	}()
	handler(ctx, event)
}
