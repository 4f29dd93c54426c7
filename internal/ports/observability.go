package ports

import "context"

// Metric names recorded by the reconciler and waiter.
const (
	MetricReconciliations   = "lambda_deploy_reconciliations_total"
	MetricReconcileDuration = "lambda_deploy_reconcile_duration_seconds"
	MetricRemoteCalls       = "lambda_deploy_remote_calls_total"
	MetricConvergencePolls  = "lambda_deploy_convergence_polls_total"
	MetricCodeBytes         = "lambda_deploy_code_bytes"
)

// MetricsCollector records quantitative observability signals:
//   - Counters:
//     lambda_deploy_reconciliations_total{outcome="Created|CodeUpdated|..."}
//     lambda_deploy_remote_calls_total{operation="...", status="ok|<error code>"}
//     lambda_deploy_convergence_polls_total{state="InProgress|Successful|Failed"}
//   - Gauges:
//     lambda_deploy_code_bytes
//   - Histograms:
//     lambda_deploy_reconcile_duration_seconds
type MetricsCollector interface {
	IncCounter(ctx context.Context, name string, labels map[string]string)
	SetGauge(ctx context.Context, name string, value float64, labels map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, labels map[string]string)
}

// Tracer manages tracing spans. Span names follow `<component>.<operation>`
// (e.g. `reconciler.reconcile`, `lambda.update_code`, `waiter.poll`).
type Tracer interface {
	StartSpan(ctx context.Context, name string, attributes ...interface{}) (context.Context, Span)
}

// Span represents an active tracing span.
type Span interface {
	SetAttribute(key string, value interface{})
	SetStatus(status SpanStatus, message string)
	End()
}

// SpanStatus provides strongly typed span result semantics.
type SpanStatus string

const (
	SpanStatusOK    SpanStatus = "ok"
	SpanStatusError SpanStatus = "error"
)
