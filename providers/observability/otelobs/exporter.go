package otelobs

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/leofalp/cllm/providers/observability"
)

// LogExporter is a sdktrace.SpanExporter that writes each finished span as
// one debug record through an observability.Logger. It lets the CLI run with
// real otel spans without a collector.
type LogExporter struct {
	logger observability.Logger
}

// NewLogExporter returns an exporter writing to logger.
func NewLogExporter(logger observability.Logger) *LogExporter {
	return &LogExporter{logger: logger}
}

var _ sdktrace.SpanExporter = (*LogExporter)(nil)

// ExportSpans logs one line per finished span.
func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		attrs := []observability.Attribute{
			observability.String("span", span.Name()),
			observability.String("trace_id", span.SpanContext().TraceID().String()),
			observability.Duration(observability.AttrDuration, span.EndTime().Sub(span.StartTime())),
			observability.Int("events", len(span.Events())),
			observability.String("status", span.Status().Code.String()),
		}
		for _, kv := range span.Attributes() {
			attrs = append(attrs, observability.String(string(kv.Key), kv.Value.Emit()))
		}
		e.logger.Debug(ctx, "otel span", attrs...)
	}
	return nil
}

// Shutdown is a no-op.
func (e *LogExporter) Shutdown(context.Context) error { return nil }

// NewTracerProvider wires a LogExporter into a batching sdk tracer provider.
// Callers must Shutdown the provider to flush pending spans.
func NewTracerProvider(logger observability.Logger) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithBatcher(NewLogExporter(logger)))
}
