// Package observability defines the tracing, metrics and logging interfaces
// used throughout cllm, plus the attribute, span, event and metric names that
// components record.
//
// [Provider] composes [Tracer], [Metrics] and [Logger]. It is injected through
// options and also carried in a [context.Context] ([ContextWithObserver],
// [ContextWithSpan]) so that transports can report without new parameters.
// Implementations live in slogobs (log/slog) and otelobs (OpenTelemetry);
// [Nop] discards everything.
package observability
