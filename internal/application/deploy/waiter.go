package deploy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/function"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/ports"
)

const (
	// MinPollInterval is the shortest delay allowed between two status polls.
	MinPollInterval = 2 * time.Second
	// DefaultWaitMinutes applies when the caller passes a non-positive bound.
	DefaultWaitMinutes = 5
	// MaxWaitMinutes is the hard ceiling on any convergence wait.
	MaxWaitMinutes = 30
)

// Clock abstracts time so the poll loop can be driven deterministically.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// ClampWaitMinutes applies the default and the ceiling to a requested bound.
func ClampWaitMinutes(minutes int) int {
	switch {
	case minutes <= 0:
		return DefaultWaitMinutes
	case minutes > MaxWaitMinutes:
		return MaxWaitMinutes
	default:
		return minutes
	}
}

// Waiter polls the remote store until a previously accepted update settles.
type Waiter struct {
	store    ports.FunctionStore
	clock    Clock
	interval time.Duration
	logger   ports.Logger
	events   ports.EventPublisher
	metrics  ports.MetricsCollector
	tracer   ports.Tracer
}

// WaiterOption customises a Waiter.
type WaiterOption func(*Waiter)

// WithClock replaces the wall clock.
func WithClock(clock Clock) WaiterOption {
	return func(w *Waiter) {
		if clock != nil {
			w.clock = clock
		}
	}
}

// WithPollInterval sets the delay between polls. Values below
// MinPollInterval are raised to it.
func WithPollInterval(interval time.Duration) WaiterOption {
	return func(w *Waiter) {
		w.interval = interval
	}
}

// WithWaiterObservability attaches metrics and tracing.
func WithWaiterObservability(metrics ports.MetricsCollector, tracer ports.Tracer) WaiterOption {
	return func(w *Waiter) {
		w.metrics = metrics
		w.tracer = tracer
	}
}

// NewWaiter constructs a Waiter polling store.
func NewWaiter(store ports.FunctionStore, logger ports.Logger, events ports.EventPublisher, opts ...WaiterOption) *Waiter {
	w := &Waiter{
		store:    store,
		clock:    systemClock{},
		interval: MinPollInterval,
		logger:   logger,
		events:   events,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.interval < MinPollInterval {
		w.interval = MinPollInterval
	}
	return w
}

// WaitUntilUpdated blocks until the function's last update succeeds, fails,
// the clamped bound elapses, or ctx is cancelled. Remote errors from polling
// are returned as classified by the store.
func (w *Waiter) WaitUntilUpdated(ctx context.Context, name string, maxWaitMinutes int) (err error) {
	minutes := ClampWaitMinutes(maxWaitMinutes)
	if minutes != maxWaitMinutes && w.logger != nil {
		w.logger.Debug(ctx, "adjusted convergence wait bound", "function", name, "requested_minutes", maxWaitMinutes, "minutes", minutes)
	}

	ctx, span := startSpan(ctx, w.tracer, "waiter.wait_until_updated", "function", name, "max_wait_minutes", minutes)
	defer func() { endSpan(span, err) }()

	start := w.clock.Now()
	deadline := start.Add(time.Duration(minutes) * time.Minute)

	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return w.cancelled(name, ctx.Err())
		}

		status, pollErr := w.store.PollStatus(ctx, name)
		if pollErr != nil {
			if ctx.Err() != nil {
				return w.cancelled(name, ctx.Err())
			}
			return pollErr
		}

		w.recordPoll(ctx, name, attempt, status)

		switch {
		case status.State == function.UpdateFailed:
			return function.NewError(function.ErrCodeConvergenceFailed,
				fmt.Sprintf("function %s update failed", name),
				reasonError(status.Reason),
				map[string]interface{}{"function": name, "reason": status.Reason})
		case status.Stable():
			if w.logger != nil {
				w.logger.Info(ctx, "function update converged", "function", name, "polls", attempt, "duration_ms", w.clock.Now().Sub(start).Milliseconds())
			}
			return nil
		}

		if !w.clock.Now().Before(deadline) {
			return function.NewError(function.ErrCodeConvergenceTimeout,
				fmt.Sprintf("function %s did not finish updating within %d minutes", name, minutes),
				nil,
				map[string]interface{}{"function": name, "max_wait_minutes": minutes, "polls": attempt})
		}

		select {
		case <-ctx.Done():
			return w.cancelled(name, ctx.Err())
		case <-w.clock.After(w.interval):
		}
	}
}

func (w *Waiter) recordPoll(ctx context.Context, name string, attempt int, status function.UpdateStatus) {
	state := string(status.State)
	if state == "" {
		state = string(function.UpdateSuccessful)
	}
	if w.metrics != nil {
		w.metrics.IncCounter(ctx, ports.MetricConvergencePolls, map[string]string{"state": state})
	}
	if w.logger != nil {
		w.logger.Debug(ctx, "polled function status", "function", name, "attempt", attempt, "state", state)
	}
	publishEvent(ctx, w.events, w.logger, ports.EventConvergencePoll, map[string]interface{}{
		"function": name,
		"attempt":  attempt,
		"state":    state,
	})
}

func (w *Waiter) cancelled(name string, cause error) error {
	return function.NewError(function.ErrCodeCancelled,
		fmt.Sprintf("waiting for function %s cancelled", name),
		cause,
		map[string]interface{}{"function": name})
}

func reasonError(reason string) error {
	if reason == "" {
		return nil
	}
	return errors.New(reason)
}
