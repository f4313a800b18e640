package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/leofalp/cllm/providers/ai"
)

// testLogger writes to buf so tests can inspect the emitted lines.
func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func staticProvider(chunks ...ai.Chunk) ai.StreamProvider {
	return ai.StreamFunc(func(context.Context, ai.ChatRequest) (*ai.ChatStream, error) {
		return ai.NewStaticStream(chunks...), nil
	})
}

func request() ai.ChatRequest {
	return ai.ChatRequest{
		Model:    "test-model",
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "remember that I like tea"}},
		Tools:    []ai.ToolDescription{{Name: "update_user"}},
	}
}

func TestLoggingMiddleware_Minimal(t *testing.T) {
	buf := &bytes.Buffer{}
	provider := Chain(staticProvider(ai.Chunk{Parts: []ai.Part{ai.TextPart("ok")}}), NewLoggingMiddleware(testLogger(buf), LogLevelMinimal))

	stream, err := provider.StreamMessage(context.Background(), request())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := stream.Collect(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "llm stream completed") || !strings.Contains(output, "test-model") {
		t.Errorf("expected a completion entry with the model, got:\n%s", output)
	}
	if strings.Contains(output, "message_count") || strings.Contains(output, "function_calls") {
		t.Errorf("did not expect counts at LogLevelMinimal, got:\n%s", output)
	}
}

func TestLoggingMiddleware_StandardCounts(t *testing.T) {
	buf := &bytes.Buffer{}
	provider := Chain(staticProvider(
		ai.Chunk{Parts: []ai.Part{ai.TextPart("Saving. ")}},
		ai.Chunk{Parts: []ai.Part{ai.CallPart(ai.ToolCall{ID: "call_1", Name: "update_user"})}},
	), NewLoggingMiddleware(testLogger(buf), LogLevelStandard))

	stream, _ := provider.StreamMessage(context.Background(), request())
	if _, err := stream.Collect(); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"message_count=1", "tools_count=1", "chunks=2", "function_calls=1"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in log, got:\n%s", want, buf.String())
		}
	}
	if strings.Contains(buf.String(), "like tea") {
		t.Errorf("message content must not be logged below LogLevelVerbose")
	}
}

func TestLoggingMiddleware_VerboseContent(t *testing.T) {
	buf := &bytes.Buffer{}
	provider := Chain(staticProvider(ai.Chunk{Parts: []ai.Part{ai.TextPart("Noted")}}), NewLoggingMiddleware(testLogger(buf), LogLevelVerbose))

	stream, _ := provider.StreamMessage(context.Background(), request())
	_, _ = stream.Collect()

	if !strings.Contains(buf.String(), "like tea") || !strings.Contains(buf.String(), "response_content=Noted") {
		t.Errorf("expected request and response content, got:\n%s", buf.String())
	}
}

func TestLoggingMiddleware_OpenError(t *testing.T) {
	buf := &bytes.Buffer{}
	failing := ai.StreamFunc(func(context.Context, ai.ChatRequest) (*ai.ChatStream, error) {
		return nil, errors.New("401 unauthorized")
	})

	_, err := Chain(failing, NewLoggingMiddleware(testLogger(buf), LogLevelStandard)).StreamMessage(context.Background(), request())
	if err == nil {
		t.Fatal("expected the error to pass through")
	}
	if !strings.Contains(buf.String(), "llm stream failed") || !strings.Contains(buf.String(), "401 unauthorized") {
		t.Errorf("expected a failure entry, got:\n%s", buf.String())
	}
}

func TestLoggingMiddleware_MidStreamError(t *testing.T) {
	buf := &bytes.Buffer{}
	broken := ai.StreamFunc(func(context.Context, ai.ChatRequest) (*ai.ChatStream, error) {
		return ai.NewChatStream(func(yield func(ai.Chunk, error) bool) {
			yield(ai.Chunk{}, errors.New("connection reset"))
		}), nil
	})

	stream, err := Chain(broken, NewLoggingMiddleware(testLogger(buf), LogLevelMinimal)).StreamMessage(context.Background(), request())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := stream.Collect(); err == nil {
		t.Fatal("expected the stream error")
	}
	if !strings.Contains(buf.String(), "connection reset") {
		t.Errorf("expected the stream error in the log, got:\n%s", buf.String())
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	tag := func(name string) StreamMiddleware {
		return func(next ai.StreamProvider) ai.StreamProvider {
			return ai.StreamFunc(func(ctx context.Context, r ai.ChatRequest) (*ai.ChatStream, error) {
				order = append(order, name)
				return next.StreamMessage(ctx, r)
			})
		}
	}

	provider := Chain(staticProvider(), tag("outer"), nil, tag("inner"))
	if _, err := provider.StreamMessage(context.Background(), request()); err != nil {
		t.Fatal(err)
	}
	if strings.Join(order, ",") != "outer,inner" {
		t.Errorf("unexpected order %v", order)
	}
}
