package deploy

import (
	"context"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/ports"
)

// Phase names a state of the reconciliation state machine.
type Phase string

const (
	PhaseStart              Phase = "start"
	PhaseProbing            Phase = "probing"
	PhaseCreating           Phase = "creating"
	PhaseConfiguringUpdate  Phase = "configuring_update"
	PhaseWaitingConvergence Phase = "waiting_convergence"
	PhaseUpdatingCode       Phase = "updating_code"
	PhaseDone               Phase = "done"
	PhaseFailed             Phase = "failed"
)

// Decisions published with ports.EventReconcileDecision.
const (
	DecisionCreate              = "create"
	DecisionUpdateConfiguration = "update_configuration"
	DecisionSkipConfiguration   = "skip_configuration"
	DecisionDryRunStop          = "dry_run_stop"
)

type domainEvent struct {
	eventType string
	payload   interface{}
}

func (e domainEvent) EventType() string {
	return e.eventType
}

func (e domainEvent) Payload() interface{} {
	return e.payload
}

func publishEvent(ctx context.Context, publisher ports.EventPublisher, logger ports.Logger, eventType string, payload map[string]interface{}) {
	if publisher == nil {
		return
	}
	event := domainEvent{
		eventType: eventType,
		payload:   payload,
	}
	if err := publisher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn(ctx, "failed to publish domain event", "event_type", eventType, "error", err)
	}
}

type noopSpan struct{}

func (noopSpan) SetAttribute(string, interface{}) {}

func (noopSpan) SetStatus(ports.SpanStatus, string) {}

func (noopSpan) End() {}

func startSpan(ctx context.Context, tracer ports.Tracer, name string, attributes ...interface{}) (context.Context, ports.Span) {
	if tracer == nil {
		return ctx, noopSpan{}
	}
	return tracer.StartSpan(ctx, name, attributes...)
}

func endSpan(span ports.Span, err error) {
	if err != nil {
		span.SetStatus(ports.SpanStatusError, err.Error())
	} else {
		span.SetStatus(ports.SpanStatusOK, "")
	}
	span.End()
}
