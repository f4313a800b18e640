package observability

import "context"

// Nop is a Provider that discards everything. It is the default wherever an
// observer is optional.
type Nop struct{}

var _ Provider = Nop{}

func (Nop) StartSpan(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, nopSpan{}
}

func (Nop) Counter(string) Counter { return nopInstrument{} }
func (Nop) Histogram(string) Histogram { return nopInstrument{} }

func (Nop) Trace(context.Context, string, ...Attribute) {}
func (Nop) Debug(context.Context, string, ...Attribute) {}
func (Nop) Info(context.Context, string, ...Attribute) {}
func (Nop) Warn(context.Context, string, ...Attribute) {}
func (Nop) Error(context.Context, string, ...Attribute) {}

type nopSpan struct{}

func (nopSpan) End() {}
func (nopSpan) SetAttributes(...Attribute) {}
func (nopSpan) SetStatus(StatusCode, string) {}
func (nopSpan) RecordError(error) {}
func (nopSpan) AddEvent(string, ...Attribute) {}

type nopInstrument struct{}

func (nopInstrument) Add(context.Context, int64, ...Attribute) {}
func (nopInstrument) Record(context.Context, float64, ...Attribute) {}

// OrNop returns p, or Nop when p is nil.
func OrNop(p Provider) Provider {
	if p == nil {
		return Nop{}
	}
	return p
}

// SpanOrNop returns the span carried by ctx, or a span that discards
// everything when there is none.
func SpanOrNop(ctx context.Context) Span {
	if span := SpanFromContext(ctx); span != nil {
		return span
	}
	return nopSpan{}
}
