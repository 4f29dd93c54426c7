package tracing

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/ports"
)

// NewProvider builds a tracer provider whose finished spans are written to
// logger at debug level.
func NewProvider(logger ports.Logger) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewLoggingProcessor(logger)),
	)
}

// LoggingProcessor is a span processor that logs every finished span.
type LoggingProcessor struct {
	logger ports.Logger
}

// NewLoggingProcessor creates a LoggingProcessor.
func NewLoggingProcessor(logger ports.Logger) *LoggingProcessor {
	return &LoggingProcessor{logger: logger}
}

var _ sdktrace.SpanProcessor = (*LoggingProcessor)(nil)

// OnStart implements sdktrace.SpanProcessor.
func (p *LoggingProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd implements sdktrace.SpanProcessor.
func (p *LoggingProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	if p.logger == nil {
		return
	}
	keyvals := []interface{}{
		"span", s.Name(),
		"trace_id", s.SpanContext().TraceID().String(),
		"duration_ms", s.EndTime().Sub(s.StartTime()).Milliseconds(),
		"status", s.Status().Code.String(),
	}
	if desc := s.Status().Description; desc != "" {
		keyvals = append(keyvals, "status_message", desc)
	}
	p.logger.Debug(context.Background(), "span finished", keyvals...)
}

// Shutdown implements sdktrace.SpanProcessor.
func (p *LoggingProcessor) Shutdown(context.Context) error { return nil }

// ForceFlush implements sdktrace.SpanProcessor.
func (p *LoggingProcessor) ForceFlush(context.Context) error { return nil }
