// Package otelobs adapts observability.Provider to OpenTelemetry. Spans and
// metric instruments come from otel tracer and meter providers; log calls are
// forwarded to an observability.Logger. [NewTracerProvider] builds an sdk
// provider that exports finished spans to the log.
package otelobs
