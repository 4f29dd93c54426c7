// Package tracing adapts ports.Tracer to OpenTelemetry.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/ports"
)

// InstrumentationName identifies spans produced by this tool.
const InstrumentationName = "github.com/alexisbeaulieu97/lambda-deploy"

// Tracer implements ports.Tracer on an OpenTelemetry tracer.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer wraps tracer. If tracer is nil, the global tracer provider is used.
func NewTracer(tracer trace.Tracer) *Tracer {
	if tracer == nil {
		tracer = otel.GetTracerProvider().Tracer(InstrumentationName)
	}
	return &Tracer{tracer: tracer}
}

var _ ports.Tracer = (*Tracer)(nil)

// StartSpan starts an internal span. attributes are key/value pairs.
func (t *Tracer) StartSpan(ctx context.Context, name string, attributes ...interface{}) (context.Context, ports.Span) {
	opts := []trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindInternal)}
	if attrs := toAttributes(attributes); len(attrs) > 0 {
		opts = append(opts, trace.WithAttributes(attrs...))
	}
	if id := ports.GetCorrelationID(ctx); id != "" {
		opts = append(opts, trace.WithAttributes(attribute.String("correlation_id", id)))
	}
	ctx, span := t.tracer.Start(ctx, name, opts...)
	return ctx, &otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) SetAttribute(key string, value interface{}) {
	s.span.SetAttributes(attributeOf(key, value))
}

func (s *otelSpan) SetStatus(status ports.SpanStatus, message string) {
	if status == ports.SpanStatusError {
		s.span.SetStatus(codes.Error, message)
		return
	}
	s.span.SetStatus(codes.Ok, "")
}

func (s *otelSpan) End() {
	s.span.End()
}

func toAttributes(keyvals []interface{}) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}
		attrs = append(attrs, attributeOf(key, keyvals[i+1]))
	}
	return attrs
}

func attributeOf(key string, value interface{}) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
