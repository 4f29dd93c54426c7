package events

import (
	"context"
	"sort"
	"sync"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/ports"
)

// AllEvents subscribes a handler to every event type.
const AllEvents = "*"

// LoggingPublisher emits domain events as structured log entries and fans them
// out to subscribers.
type LoggingPublisher struct {
	logger ports.Logger
	quiet  map[string]struct{}
	subs   map[string][]subscriptionEntry
	nextID int
	mu     sync.RWMutex
}

// NewLoggingPublisher creates an event publisher that writes each event as a
// structured log entry. Events listed in quiet are logged at debug level.
func NewLoggingPublisher(logger ports.Logger, quiet ...string) *LoggingPublisher {
	p := &LoggingPublisher{
		logger: logger,
		quiet:  make(map[string]struct{}, len(quiet)),
		subs:   make(map[string][]subscriptionEntry),
	}
	for _, eventType := range quiet {
		p.quiet[eventType] = struct{}{}
	}
	return p
}

// Publish renders the event as a structured log entry and runs the handlers
// subscribed to its type, then the wildcard handlers.
func (p *LoggingPublisher) Publish(ctx context.Context, event ports.DomainEvent) error {
	if p == nil || event == nil {
		return nil
	}

	p.mu.RLock()
	handlers := append([]subscriptionEntry(nil), p.subs[event.EventType()]...)
	handlers = append(handlers, p.subs[AllEvents]...)
	p.mu.RUnlock()

	if p.logger != nil {
		fields := eventFields(event)
		if _, ok := p.quiet[event.EventType()]; ok {
			p.logger.Debug(ctx, "domain event", fields...)
		} else {
			p.logger.Info(ctx, "domain event", fields...)
		}
	}

	for _, entry := range handlers {
		handler := entry.handler
		if handler == nil {
			continue
		}
		if err := handler(ctx, event); err != nil && p.logger != nil {
			p.logger.Warn(ctx, "event handler failed", "event_type", event.EventType(), "error", err)
		}
	}

	return nil
}

// Subscribe registers a handler for the provided event type, or for every
// type when eventType is AllEvents.
func (p *LoggingPublisher) Subscribe(eventType string, handler ports.EventHandler) (ports.Subscription, error) {
	if p == nil || handler == nil {
		return noopSubscription{}, nil
	}
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.subs[eventType] = append(p.subs[eventType], subscriptionEntry{id: id, handler: handler})
	p.mu.Unlock()

	return subscription{
		cancel: func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			handlers := p.subs[eventType]
			for i, entry := range handlers {
				if entry.id == id {
					p.subs[eventType] = append(handlers[:i], handlers[i+1:]...)
					break
				}
			}
		},
	}, nil
}

func eventFields(event ports.DomainEvent) []interface{} {
	fields := []interface{}{"event_type", event.EventType()}
	switch payload := event.Payload().(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(payload))
		for key := range payload {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fields = append(fields, key, payload[key])
		}
	case nil:
	default:
		fields = append(fields, "payload", payload)
	}
	return fields
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}

type subscription struct {
	cancel func()
}

func (s subscription) Unsubscribe() {
	if s.cancel != nil {
		s.cancel()
	}
}

type subscriptionEntry struct {
	id      int
	handler ports.EventHandler
}
