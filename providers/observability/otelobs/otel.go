package otelobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/leofalp/cllm/providers/observability"
	"github.com/leofalp/cllm/providers/observability/slogobs"
)

const instrumentationName = "github.com/leofalp/cllm"

// Observer implements observability.Provider with OpenTelemetry tracing and
// metrics. Log calls are delegated to a separate observability.Logger, a
// slogobs.Observer unless WithLogger says otherwise.
type Observer struct {
	tracer trace.Tracer
	meter  metric.Meter
	logger observability.Logger

	mu         sync.Mutex
	counters   map[string]metric.Int64Counter
	histograms map[string]metric.Float64Histogram
}

// Option configures an Observer.
type Option func(*options)

type options struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	logger         observability.Logger
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = provider }
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = provider }
}

// WithLogger sets where log calls go.
func WithLogger(logger observability.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New builds an Observer from the global otel providers unless overridden.
func New(opts ...Option) *Observer {
	cfg := &options{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.tracerProvider == nil {
		cfg.tracerProvider = otel.GetTracerProvider()
	}
	if cfg.meterProvider == nil {
		cfg.meterProvider = otel.GetMeterProvider()
	}
	if cfg.logger == nil {
		cfg.logger = slogobs.New()
	}

	return &Observer{
		tracer:     cfg.tracerProvider.Tracer(instrumentationName),
		meter:      cfg.meterProvider.Meter(instrumentationName),
		logger:     cfg.logger,
		counters:   map[string]metric.Int64Counter{},
		histograms: map[string]metric.Float64Histogram{},
	}
}

var _ observability.Provider = (*Observer)(nil)

// StartSpan starts an otel span and stores the wrapper in the returned context.
func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	ctx, span := o.tracer.Start(ctx, name, trace.WithAttributes(toOtel(attrs)...))
	wrapped := &otelSpan{span: span}
	return observability.ContextWithSpan(ctx, wrapped), wrapped
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) End() { s.span.End() }

func (s *otelSpan) SetAttributes(attrs ...observability.Attribute) {
	s.span.SetAttributes(toOtel(attrs)...)
}

func (s *otelSpan) SetStatus(code observability.StatusCode, description string) {
	switch code {
	case observability.StatusOK:
		s.span.SetStatus(codes.Ok, description)
	case observability.StatusError:
		s.span.SetStatus(codes.Error, description)
	default:
		s.span.SetStatus(codes.Unset, description)
	}
}

func (s *otelSpan) RecordError(err error) {
	if err != nil {
		s.span.RecordError(err)
	}
}

func (s *otelSpan) AddEvent(name string, attrs ...observability.Attribute) {
	s.span.AddEvent(name, trace.WithAttributes(toOtel(attrs)...))
}

// Counter returns an Int64Counter. Instrument creation errors fall back to a
// no-op and are logged once per name.
func (o *Observer) Counter(name string) observability.Counter {
	o.mu.Lock()
	defer o.mu.Unlock()

	counter, ok := o.counters[name]
	if !ok {
		var err error
		counter, err = o.meter.Int64Counter(name)
		if err != nil {
			o.logger.Warn(context.Background(), "otel counter unavailable",
				observability.String("metric", name), observability.Error(err))
			return observability.Nop{}.Counter(name)
		}
		o.counters[name] = counter
	}
	return counterAdapter{counter}
}

// Histogram returns a Float64Histogram, with the same fallback as Counter.
func (o *Observer) Histogram(name string) observability.Histogram {
	o.mu.Lock()
	defer o.mu.Unlock()

	histogram, ok := o.histograms[name]
	if !ok {
		var err error
		histogram, err = o.meter.Float64Histogram(name)
		if err != nil {
			o.logger.Warn(context.Background(), "otel histogram unavailable",
				observability.String("metric", name), observability.Error(err))
			return observability.Nop{}.Histogram(name)
		}
		o.histograms[name] = histogram
	}
	return histogramAdapter{histogram}
}

type counterAdapter struct{ metric.Int64Counter }

func (c counterAdapter) Add(ctx context.Context, value int64, attrs ...observability.Attribute) {
	c.Int64Counter.Add(ctx, value, metric.WithAttributes(toOtel(attrs)...))
}

type histogramAdapter struct{ metric.Float64Histogram }

func (h histogramAdapter) Record(ctx context.Context, value float64, attrs ...observability.Attribute) {
	h.Float64Histogram.Record(ctx, value, metric.WithAttributes(toOtel(attrs)...))
}

// Log methods forward to the wrapped logger.

func (o *Observer) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.Trace(ctx, msg, attrs...)
}

func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.Debug(ctx, msg, attrs...)
}

func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.Info(ctx, msg, attrs...)
}

func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.Warn(ctx, msg, attrs...)
}

func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.Error(ctx, msg, attrs...)
}

func toOtel(attrs []observability.Attribute) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		switch value := attr.Value.(type) {
		case string:
			out = append(out, attribute.String(attr.Key, value))
		case int:
			out = append(out, attribute.Int(attr.Key, value))
		case int64:
			out = append(out, attribute.Int64(attr.Key, value))
		case float64:
			out = append(out, attribute.Float64(attr.Key, value))
		case bool:
			out = append(out, attribute.Bool(attr.Key, value))
		case time.Duration:
			out = append(out, attribute.Int64(attr.Key+"_ms", value.Milliseconds()))
		case []string:
			out = append(out, attribute.StringSlice(attr.Key, value))
		default:
			out = append(out, attribute.String(attr.Key, fmt.Sprint(value)))
		}
	}
	return out
}
