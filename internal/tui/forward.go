package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/ports"
)

// ForwardedEvents are the event types the deployment view renders.
var ForwardedEvents = []string{
	ports.EventReconcilePhase,
	ports.EventReconcileDecision,
	ports.EventConvergencePoll,
	ports.EventReconcileFailed,
}

// Forward subscribes to the reconciler events and hands each one to send as
// an EventMsg. Callers unsubscribe the returned subscriptions when done.
func Forward(publisher ports.EventPublisher, send func(tea.Msg)) ([]ports.Subscription, error) {
	subs := make([]ports.Subscription, 0, len(ForwardedEvents))
	for _, eventType := range ForwardedEvents {
		sub, err := publisher.Subscribe(eventType, func(_ context.Context, event ports.DomainEvent) error {
			payload, _ := event.Payload().(map[string]interface{})
			send(EventMsg{Type: event.EventType(), Payload: payload})
			return nil
		})
		if err != nil {
			for _, s := range subs {
				s.Unsubscribe()
			}
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}
