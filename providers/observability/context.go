package observability

import "context"

type spanContextKey struct{}

type observerContextKey struct{}

// SpanFromContext returns the span stored in ctx, or nil.
func SpanFromContext(ctx context.Context) Span {
	if ctx == nil {
		return nil
	}
	span, _ := ctx.Value(spanContextKey{}).(Span)
	return span
}

// ContextWithSpan returns a copy of ctx carrying span.
func ContextWithSpan(ctx context.Context, span Span) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, spanContextKey{}, span)
}

// ObserverFromContext returns the provider stored in ctx, or nil.
func ObserverFromContext(ctx context.Context) Provider {
	if ctx == nil {
		return nil
	}
	observer, _ := ctx.Value(observerContextKey{}).(Provider)
	return observer
}

// ContextWithObserver returns a copy of ctx carrying observer, so transports
// deep in a call chain can log without an explicit dependency.
func ContextWithObserver(ctx context.Context, observer Provider) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, observerContextKey{}, observer)
}
