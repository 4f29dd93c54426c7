package ports

import "context"

const (
	// EventReconcileStarted is emitted when a reconciliation run begins.
	EventReconcileStarted = "reconcile.started"
	// EventReconcilePhase is emitted on every state-machine transition.
	EventReconcilePhase = "reconcile.phase"
	// EventReconcileDecision is emitted when the reconciler picks a path
	// (create, update configuration, skip, dry-run stop).
	EventReconcileDecision = "reconcile.decision"
	// EventReconcileCompleted is emitted after a successful run.
	EventReconcileCompleted = "reconcile.completed"
	// EventReconcileFailed is emitted when a run terminates with an error.
	EventReconcileFailed = "reconcile.failed"
	// EventConvergencePoll is emitted after each status poll.
	EventConvergencePoll = "convergence.poll"
)

// DomainEvent represents a significant occurrence within the application
// layer. Events carry structured payloads that subscribers use for logging
// and UI updates.
type DomainEvent interface {
	EventType() string
	Payload() interface{}
}

// EventPublisher distributes events to interested subscribers. Dispatch is
// synchronous: Publish blocks until all handlers run. Implementations must be
// thread-safe.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
}

// EventHandler processes an event of a specific type. Failures should be
// returned rather than panicking so publishers can keep delivering.
type EventHandler func(context.Context, DomainEvent) error

// Subscription represents a registered handler. Callers must invoke
// Unsubscribe to stop receiving events.
type Subscription interface {
	Unsubscribe()
}
