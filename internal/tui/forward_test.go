package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/infrastructure/events"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/ports"
)

type testEvent struct {
	eventType string
	payload   map[string]interface{}
}

func (e testEvent) EventType() string { return e.eventType }

func (e testEvent) Payload() interface{} { return e.payload }

func TestForwardDeliversRenderedEvents(t *testing.T) {
	t.Parallel()

	publisher := events.NewLoggingPublisher(nil)
	var got []tea.Msg
	subs, err := Forward(publisher, func(msg tea.Msg) { got = append(got, msg) })
	require.NoError(t, err)
	require.Len(t, subs, len(ForwardedEvents))

	ctx := context.Background()
	require.NoError(t, publisher.Publish(ctx, testEvent{eventType: ports.EventReconcilePhase, payload: map[string]interface{}{"phase": "probing"}}))
	require.NoError(t, publisher.Publish(ctx, testEvent{eventType: ports.EventReconcileStarted}))

	require.Len(t, got, 1)
	msg := got[0].(EventMsg)
	require.Equal(t, ports.EventReconcilePhase, msg.Type)
	require.Equal(t, "probing", msg.Payload["phase"])

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	require.NoError(t, publisher.Publish(ctx, testEvent{eventType: ports.EventReconcilePhase}))
	require.Len(t, got, 1)
}
