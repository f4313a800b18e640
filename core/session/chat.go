package session

import (
	"context"
	"errors"
	"strings"

	"github.com/leofalp/cllm/providers/ai"
	"github.com/leofalp/cllm/providers/memory/inmemory"
	"github.com/leofalp/cllm/providers/observability"
)

var errNoStream = errors.New("provider returned no stream")

// chat is the handle of one initialized conversation: the system prompt and
// tool declarations fixed at creation, and the history sent with every request.
type chat struct {
	provider     ai.StreamProvider
	model        string
	systemPrompt string
	tools        []ai.ToolDescription
	history      *inmemory.ArrayMemory
}

func newChat(provider ai.StreamProvider, model, systemPrompt string, tools []ai.ToolDescription) *chat {
	return &chat{
		provider:     provider,
		model:        model,
		systemPrompt: systemPrompt,
		tools:        tools,
		history:      inmemory.New(),
	}
}

// SendMessage appends a user message and opens the reply stream.
func (c *chat) SendMessage(ctx context.Context, text string) (*ai.ChatStream, error) {
	c.history.AppendMessage(ctx, &ai.Message{Role: ai.RoleUser, Content: text})
	return c.stream(ctx)
}

// SendToolResults appends the results of the last reply's calls and opens
// the continuation stream.
func (c *chat) SendToolResults(ctx context.Context, results []ai.ToolResult) (*ai.ChatStream, error) {
	c.history.AppendMessage(ctx, &ai.Message{Role: ai.RoleTool, ToolResults: results})
	return c.stream(ctx)
}

// stream sends the whole history. The returned stream appends the model's
// reply to the history once it is fully read.
func (c *chat) stream(ctx context.Context) (*ai.ChatStream, error) {
	messages, err := c.history.AllMessages(ctx)
	if err != nil {
		return nil, err
	}

	observability.SpanOrNop(ctx).SetAttributes(
		observability.Int(observability.AttrRequestMessagesCount, len(messages)),
		observability.Int(observability.AttrRequestToolsCount, len(c.tools)),
	)

	stream, err := c.provider.StreamMessage(ctx, ai.ChatRequest{
		Model:        c.model,
		SystemPrompt: c.systemPrompt,
		Messages:     messages,
		Tools:        c.tools,
	})
	if err != nil {
		return nil, err
	}
	if stream == nil {
		return nil, errNoStream
	}

	reply := ai.Message{Role: ai.RoleAssistant}
	var text strings.Builder
	return stream.Tap(
		func(chunk ai.Chunk) {
			for _, part := range chunk.Parts {
				switch part.Kind {
				case ai.PartText:
					text.WriteString(part.Text)
				case ai.PartFunctionCall:
					if part.Call != nil {
						reply.ToolCalls = append(reply.ToolCalls, *part.Call)
					}
				}
			}
		},
		func(err error) {
			if err != nil {
				return
			}
			reply.Content = text.String()
			c.history.AppendMessage(ctx, &reply)
		},
	), nil
}
