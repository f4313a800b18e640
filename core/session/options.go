package session

import (
	"context"

	"github.com/leofalp/cllm/providers/observability"
)

// PromptBuilder renders the system prompt of a new conversation.
type PromptBuilder interface {
	Build(ctx context.Context) (string, error)
}

type options struct {
	model         string
	textSink      func(total string)
	toolNotifier  func(name string)
	observer      observability.Provider
	maxPasses     *int
	promptBuilder PromptBuilder
}

// Option configures a Session or a call to Ask.
type Option func(*options)

// WithModel selects the model. Empty means the provider default.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithTextSink receives the visible text of the current turn after every chunk.
func WithTextSink(sink func(total string)) Option {
	return func(o *options) {
		o.textSink = sink
	}
}

// WithToolNotifier is told the name of each tool right before it runs.
func WithToolNotifier(notify func(name string)) Option {
	return func(o *options) {
		o.toolNotifier = notify
	}
}

// WithObserver sets the provider used by the session, the turn driver and the dispatcher.
func WithObserver(observer observability.Provider) Option {
	return func(o *options) {
		o.observer = observability.OrNop(observer)
	}
}

// WithMaxPasses caps the model passes of a turn; see turn.WithMaxPasses.
func WithMaxPasses(n int) Option {
	return func(o *options) {
		o.maxPasses = &n
	}
}

// WithPromptAssembler replaces the prompt built from the memory store.
func WithPromptAssembler(builder PromptBuilder) Option {
	return func(o *options) {
		o.promptBuilder = builder
	}
}

func applyOptions(opts ...Option) *options {
	o := &options{observer: observability.Nop{}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
