package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/leofalp/cllm/core/prompt"
	"github.com/leofalp/cllm/core/turn"
	"github.com/leofalp/cllm/providers/ai"
	"github.com/leofalp/cllm/providers/memory"
	"github.com/leofalp/cllm/providers/observability"
	"github.com/leofalp/cllm/providers/tool"
)

// Turn-level errors, matched with errors.Is.
var (
	ErrToolExecutionFailed  = turn.ErrToolExecutionFailed
	ErrTransportUnavailable = turn.ErrTransportUnavailable
	ErrToolLoopExceeded     = turn.ErrToolLoopExceeded
)

// Session is one conversation with the model. Sends are serialized.
type Session struct {
	mu       sync.Mutex
	id       string
	provider ai.StreamProvider
	prompt   PromptBuilder
	driver   *turn.Driver
	model    string
	observer observability.Provider

	// chat is nil until the first successful initialization.
	chat *chat
}

// New returns an uninitialized session. Nothing is read from store and
// nothing is sent until the first Send or Start.
func New(provider ai.StreamProvider, store memory.Store, opts ...Option) (*Session, error) {
	o := applyOptions(opts...)

	builder := o.promptBuilder
	if builder == nil {
		assembler, err := prompt.New(store)
		if err != nil {
			return nil, err
		}
		builder = assembler
	}

	driverOpts := []turn.Option{
		turn.WithObserver(o.observer),
		turn.WithTextSink(o.textSink),
		turn.WithToolNotifier(o.toolNotifier),
	}
	if o.maxPasses != nil {
		driverOpts = append(driverOpts, turn.WithMaxPasses(*o.maxPasses))
	}

	return &Session{
		id:       uuid.NewString(),
		provider: provider,
		prompt:   builder,
		driver:   turn.New(tool.NewDispatcher(store, tool.WithObserver(o.observer)), driverOpts...),
		model:    o.model,
		observer: o.observer,
	}, nil
}

// ID returns the session identifier attached to spans and logs.
func (s *Session) ID() string { return s.id }

// Initialized reports whether the chat handle exists.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chat != nil
}

// Reset drops the chat handle and its history. The next Send builds a
// fresh prompt from the memory as it is then.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = nil
}

// Start initializes the session eagerly and, when first is non-nil, sends it.
func (s *Session) Start(ctx context.Context, first *string) (string, error) {
	if first != nil {
		return s.Send(ctx, *first)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chat != nil {
		return "", nil
	}
	c, err := s.newChat(ctx)
	if err != nil {
		return "", err
	}
	s.chat = c
	return "", nil
}

// Send runs one turn and returns its visible text.
//
// The first Send snapshots the memory into the system prompt. If the first
// Send fails for any reason, the session is left uninitialized and the next
// Send builds a fresh chat. A later failed turn keeps the chat but rolls the
// history back so the next Send starts from the last completed turn.
// Concurrent calls run one turn at a time.
func (s *Session) Send(ctx context.Context, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = observability.ContextWithObserver(ctx, s.observer)
	ctx, span := s.observer.StartSpan(ctx, observability.SpanSessionSend,
		observability.String(observability.AttrSessionID, s.id),
		observability.String(observability.AttrLLMModel, s.model),
	)
	defer span.End()

	previous := s.chat
	c := previous
	if c == nil {
		var err error
		if c, err = s.newChat(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(observability.StatusError, err.Error())
			return "", err
		}
	}

	mark := c.history.Len()
	stream, err := c.SendMessage(ctx, message)
	if err != nil {
		c.history.Truncate(ctx, mark)
		err = fmt.Errorf("%w: %w", ErrTransportUnavailable, err)
		span.RecordError(err)
		span.SetStatus(observability.StatusError, err.Error())
		return "", err
	}
	s.chat = c

	result, err := s.driver.Run(ctx, c, stream)
	if err != nil {
		c.history.Truncate(ctx, mark)
		s.chat = previous
		span.RecordError(err)
		span.SetStatus(observability.StatusError, err.Error())
		return result.Text, err
	}

	span.SetAttributes(observability.Int(observability.AttrTurnPasses, result.Passes))
	span.SetStatus(observability.StatusOK, "")
	return result.Text, nil
}

func (s *Session) newChat(ctx context.Context) (*chat, error) {
	systemPrompt, err := s.prompt.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build system prompt: %w", err)
	}
	s.observer.Debug(ctx, "conversation initialized",
		observability.String(observability.AttrSessionID, s.id),
		observability.Int("prompt.length", len(systemPrompt)),
	)
	return newChat(s.provider, s.model, systemPrompt, tool.Declarations()), nil
}
