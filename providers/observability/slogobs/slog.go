package slogobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/leofalp/cllm/providers/observability"
)

// Observer implements observability.Provider with a *slog.Logger.
type Observer struct {
	logger  *slog.Logger
	metrics *metricsStore
}

// New builds an Observer. Without options the format and level come from
// CLLM_LOG_FORMAT and CLLM_LOG_LEVEL, and output goes to stderr.
//
//	observer := slogobs.New(slogobs.WithLevel(slog.LevelDebug), slogobs.WithFormat(slogobs.FormatJSON))
func New(opts ...Option) *Observer {
	cfg := applyOptions(opts...)

	logger := cfg.logger
	if logger == nil {
		handlerOptions := &slog.HandlerOptions{Level: cfg.level, ReplaceAttr: replaceLevel}
		var handler slog.Handler
		if cfg.format == FormatJSON {
			handler = slog.NewJSONHandler(cfg.output, handlerOptions)
		} else {
			handler = slog.NewTextHandler(cfg.output, handlerOptions)
		}
		logger = slog.New(handler)
	}

	return &Observer{
		logger:  logger,
		metrics: &metricsStore{counters: map[string]*slogCounter{}, histograms: map[string]*slogHistogram{}},
	}
}

var _ observability.Provider = (*Observer)(nil)

// Logger exposes the underlying slog logger.
func (o *Observer) Logger() *slog.Logger {
	return o.logger
}

// --- TRACING ---

// StartSpan logs the span start at debug level and returns a context that
// carries the span, so nested calls can add events to it.
func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	span := &slogSpan{
		name:      name,
		startTime: time.Now(),
		logger:    o.logger,
		attrs:     attrs,
	}
	o.logger.LogAttrs(ctx, slog.LevelDebug, "span started", append(toSlog(attrs), slog.String("span", name))...)
	return observability.ContextWithSpan(ctx, span), span
}

type slogSpan struct {
	mu        sync.Mutex
	name      string
	startTime time.Time
	logger    *slog.Logger
	attrs     []observability.Attribute
	status    string
}

func (s *slogSpan) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	logAttrs := append(toSlog(s.attrs),
		slog.String("span", s.name),
		slog.Duration("duration", time.Since(s.startTime)),
	)
	if s.status != "" {
		logAttrs = append(logAttrs, slog.String("status", s.status))
	}
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "span ended", logAttrs...)
}

func (s *slogSpan) SetAttributes(attrs ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, attrs...)
}

func (s *slogSpan) SetStatus(code observability.StatusCode, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch code {
	case observability.StatusOK:
		s.status = "ok"
	case observability.StatusError:
		s.status = "error"
	default:
		s.status = "unset"
	}
	if description != "" {
		s.status += ": " + description
	}
}

// RecordError keeps the error on the span and logs it at error level.
func (s *slogSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attrs = append(s.attrs, observability.Error(err))
	s.logger.LogAttrs(context.Background(), slog.LevelError, "span error",
		slog.String("span", s.name),
		slog.String("error", err.Error()),
	)
}

func (s *slogSpan) AddEvent(name string, attrs ...observability.Attribute) {
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, name, append(toSlog(attrs), slog.String("span", s.name))...)
}

// --- METRICS ---

// Counter returns the process-wide counter called name; every Add is logged
// at debug level with the running total.
func (o *Observer) Counter(name string) observability.Counter {
	return o.metrics.counter(name, o.logger)
}

// Histogram returns the histogram called name; observations are logged at debug level.
func (o *Observer) Histogram(name string) observability.Histogram {
	return o.metrics.histogram(name, o.logger)
}

type metricsStore struct {
	mu         sync.Mutex
	counters   map[string]*slogCounter
	histograms map[string]*slogHistogram
}

func (m *metricsStore) counter(name string, logger *slog.Logger) *slogCounter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.counters[name]; ok {
		return c
	}
	c := &slogCounter{name: name, logger: logger}
	m.counters[name] = c
	return c
}

func (m *metricsStore) histogram(name string, logger *slog.Logger) *slogHistogram {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.histograms[name]; ok {
		return h
	}
	h := &slogHistogram{name: name, logger: logger}
	m.histograms[name] = h
	return h
}

type slogCounter struct {
	name   string
	logger *slog.Logger
	mu     sync.Mutex
	value  int64
}

func (c *slogCounter) Add(ctx context.Context, value int64, attrs ...observability.Attribute) {
	c.mu.Lock()
	c.value += value
	total := c.value
	c.mu.Unlock()

	c.logger.LogAttrs(ctx, slog.LevelDebug, "counter", append(toSlog(attrs),
		slog.String("metric", c.name),
		slog.Int64("delta", value),
		slog.Int64("value", total),
	)...)
}

// Value returns the running total.
func (c *slogCounter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

type slogHistogram struct {
	name   string
	logger *slog.Logger
}

func (h *slogHistogram) Record(ctx context.Context, value float64, attrs ...observability.Attribute) {
	h.logger.LogAttrs(ctx, slog.LevelDebug, "histogram", append(toSlog(attrs),
		slog.String("metric", h.name),
		slog.Float64("value", value),
	)...)
}

// --- LOGGING ---

// Log methods.

func (o *Observer) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, LevelTrace, msg, toSlog(attrs)...)
}

func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelDebug, msg, toSlog(attrs)...)
}

func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelInfo, msg, toSlog(attrs)...)
}

func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelWarn, msg, toSlog(attrs)...)
}

func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelError, msg, toSlog(attrs)...)
}

func toSlog(attrs []observability.Attribute) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs)+3)
	for _, attr := range attrs {
		out = append(out, slog.Any(attr.Key, attr.Value))
	}
	return out
}
