package turn

import "github.com/leofalp/cllm/providers/observability"

// DefaultMaxPasses bounds the model passes of one turn.
const DefaultMaxPasses = 10

// Option configures a Driver.
type Option func(*Driver)

// WithMaxPasses sets the pass cap. Zero or a negative value removes it.
func WithMaxPasses(n int) Option {
	return func(d *Driver) {
		d.maxPasses = n
	}
}

// WithTextSink receives the visible text of the turn so far after every chunk.
func WithTextSink(sink func(total string)) Option {
	return func(d *Driver) {
		d.textSink = sink
	}
}

// WithToolNotifier is called with the tool name right before each dispatch.
func WithToolNotifier(notify func(name string)) Option {
	return func(d *Driver) {
		d.toolNotifier = notify
	}
}

// WithObserver sets the provider for spans, metrics and logs. Nil means no-op.
func WithObserver(observer observability.Provider) Option {
	return func(d *Driver) {
		d.observer = observability.OrNop(observer)
	}
}
