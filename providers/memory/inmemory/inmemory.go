package inmemory

import (
	"context"
	"sync"

	"github.com/leofalp/cllm/providers/ai"
	"github.com/leofalp/cllm/providers/memory"
	"github.com/leofalp/cllm/providers/observability"
)

// ArrayMemory is a concurrency-safe chat history held in a slice.
type ArrayMemory struct {
	mu       sync.RWMutex
	messages []ai.Message
}

// New returns an empty ArrayMemory.
func New() *ArrayMemory {
	return &ArrayMemory{messages: []ai.Message{}}
}

var _ memory.History = (*ArrayMemory)(nil)

// AppendMessage stores a copy of message. A nil message is ignored.
// With a span in ctx, an append event and the new length are recorded.
func (m *ArrayMemory) AppendMessage(ctx context.Context, message *ai.Message) {
	if message == nil {
		return
	}

	m.mu.Lock()
	m.messages = append(m.messages, *message)
	total := len(m.messages)
	m.mu.Unlock()

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventMemoryAppend,
			observability.String("message.role", string(message.Role)),
			observability.Int(observability.AttrMemoryEntries, total),
		)
	}
}

// Len returns the number of stored messages.
func (m *ArrayMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}

// Count returns the number of stored messages. The error is always nil.
func (m *ArrayMemory) Count(_ context.Context) (int, error) {
	return m.Len(), nil
}

// AllMessages returns a copy of the history. The error is always nil.
func (m *ArrayMemory) AllMessages(_ context.Context) ([]ai.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ai.Message, len(m.messages))
	copy(out, m.messages)
	return out, nil
}

// Truncate keeps the first n messages. Out-of-range n is clamped.
func (m *ArrayMemory) Truncate(ctx context.Context, n int) {
	m.mu.Lock()
	if n < 0 {
		n = 0
	}
	dropped := 0
	if n < len(m.messages) {
		dropped = len(m.messages) - n
		clear(m.messages[n:])
		m.messages = m.messages[:n]
	}
	m.mu.Unlock()

	if span := observability.SpanFromContext(ctx); span != nil && dropped > 0 {
		span.AddEvent(observability.EventHistoryRewind, observability.Int("dropped", dropped))
	}
}

// ClearMessages empties the history, keeping the backing array.
func (m *ArrayMemory) ClearMessages(ctx context.Context) {
	m.Truncate(ctx, 0)
}
