package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leofalp/cllm/internal/utils"
	"github.com/leofalp/cllm/providers/ai"
)

// writeSSE writes one SSE data event and flushes it.
func writeSSE(writer http.ResponseWriter, data string) {
	fmt.Fprintf(writer, "data: %s\n\n", data)
	if flusher, ok := writer.(http.Flusher); ok {
		flusher.Flush()
	}
}

func newTestProvider(serverURL string) *Provider {
	return New().WithBaseURL(serverURL).WithAPIKey("test-key")
}

// TestStreamMessage_TextDeltas verifies that each SSE event's text arrives as
// its own chunk and that Collect concatenates them.
func TestStreamMessage_TextDeltas(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "text/event-stream")
		writeSSE(writer, `{"candidates":[{"content":{"parts":[{"text":"Hello"}],"role":"model"}}]}`)
		writeSSE(writer, `{"candidates":[{"content":{"parts":[{"text":" world"}],"role":"model"}}]}`)
		writeSSE(writer, `{"candidates":[{"content":{"parts":[{"text":"!"}],"role":"model"},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":5,"candidatesTokenCount":3,"totalTokenCount":8}}`)
	}))
	defer server.Close()

	stream, err := newTestProvider(server.URL).StreamMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "Hi"}},
	})
	if err != nil {
		t.Fatalf("StreamMessage returned error: %v", err)
	}

	var deltas []string
	for chunk, iterErr := range stream.Iter() {
		if iterErr != nil {
			t.Fatalf("unexpected error: %v", iterErr)
		}
		for _, p := range chunk.Parts {
			deltas = append(deltas, p.Text)
		}
	}
	if strings.Join(deltas, "|") != "Hello| world|!" {
		t.Errorf("unexpected deltas %q", deltas)
	}
}

// TestStreamMessage_FunctionCalls verifies that functionCall parts become call
// parts with raw JSON arguments and stream-unique IDs.
func TestStreamMessage_FunctionCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "text/event-stream")
		writeSSE(writer, `{"candidates":[{"content":{"parts":[{"text":"Noting that. "}],"role":"model"}}]}`)
		writeSSE(writer, `{"candidates":[{"content":{"parts":[{"functionCall":{"name":"update_user","args":{"entry_type":"fact","entry":"likes tea"}}},{"functionCall":{"name":"get_user_profile"}}],"role":"model"},"finishReason":"STOP"}]}`)
	}))
	defer server.Close()

	stream, err := newTestProvider(server.URL).StreamMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "I like tea"}},
	})
	if err != nil {
		t.Fatalf("StreamMessage returned error: %v", err)
	}

	message, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if message.Content != "Noting that. " {
		t.Errorf("unexpected content %q", message.Content)
	}
	if len(message.ToolCalls) != 2 {
		t.Fatalf("expected 2 tool calls, got %d", len(message.ToolCalls))
	}
	first, second := message.ToolCalls[0], message.ToolCalls[1]
	if first.Name != "update_user" || first.ID != "call_1" || !strings.Contains(first.Arguments, "likes tea") {
		t.Errorf("unexpected first call %+v", first)
	}
	if second.Name != "get_user_profile" || second.ID != "call_2" || second.Arguments != "" {
		t.Errorf("unexpected second call %+v", second)
	}
}

// TestStreamMessage_RequestShape verifies URL, auth header and body encoding
// of history, system prompt, declarations and results.
func TestStreamMessage_RequestShape(t *testing.T) {
	var capturedPath, capturedKey string
	var capturedBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		capturedPath = request.URL.Path + "?" + request.URL.RawQuery
		capturedKey = request.Header.Get("x-goog-api-key")
		raw, _ := io.ReadAll(request.Body)
		_ = json.Unmarshal(raw, &capturedBody)
		writer.Header().Set("Content-Type", "text/event-stream")
	}))
	defer server.Close()

	provider := newTestProvider(server.URL).WithModel("gemini-test")
	stream, err := provider.StreamMessage(context.Background(), ai.ChatRequest{
		SystemPrompt: "You are helpful.",
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: "hi"},
			{Role: ai.RoleAssistant, ToolCalls: []ai.ToolCall{{ID: "call_1", Name: "get_user_profile"}}},
			{Role: ai.RoleTool, ToolResults: []ai.ToolResult{{CallID: "call_1", Name: "get_user_profile", Payload: map[string]any{"facts": []string{}}}}},
		},
		Tools: []ai.ToolDescription{{Name: "get_user_profile", Description: "Read the profile"}},
	})
	if err != nil {
		t.Fatalf("StreamMessage returned error: %v", err)
	}
	if _, err := stream.Collect(); err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}

	if capturedPath != "/models/gemini-test:streamGenerateContent?alt=sse" {
		t.Errorf("unexpected path %q", capturedPath)
	}
	if capturedKey != "test-key" {
		t.Errorf("unexpected api key header %q", capturedKey)
	}

	contents := capturedBody["contents"].([]any)
	if len(contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(contents))
	}
	toolTurn := contents[2].(map[string]any)
	response := toolTurn["parts"].([]any)[0].(map[string]any)["functionResponse"].(map[string]any)
	if toolTurn["role"] != "user" || response["name"] != "get_user_profile" {
		t.Errorf("unexpected tool turn %v", toolTurn)
	}
	if _, ok := response["response"].(map[string]any)["result"]; !ok {
		t.Errorf("expected result wrapper in %v", response)
	}

	declaration := capturedBody["tools"].([]any)[0].(map[string]any)["functionDeclarations"].([]any)[0].(map[string]any)
	if _, hasParams := declaration["parameters"]; hasParams {
		t.Errorf("expected no parameters for an argument-less tool, got %v", declaration)
	}
}

func TestStreamMessage_MissingAPIKey(t *testing.T) {
	_, err := New().WithAPIKey("").StreamMessage(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestStreamMessage_HTTPErrorBeforeStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, `{"error":{"message":"API key not valid"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := newTestProvider(server.URL).StreamMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "Hi"}},
	})
	if !errors.Is(err, utils.ErrHTTPStatus) {
		t.Fatalf("expected ErrHTTPStatus, got %v", err)
	}
}

func TestStreamMessage_MalformedEventEndsStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "text/event-stream")
		writeSSE(writer, `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`)
		writeSSE(writer, `{not json`)
	}))
	defer server.Close()

	stream, err := newTestProvider(server.URL).StreamMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "Hi"}},
	})
	if err != nil {
		t.Fatalf("StreamMessage returned error: %v", err)
	}
	message, err := stream.Collect()
	if err == nil {
		t.Fatal("expected a decode error")
	}
	if message.Content != "ok" {
		t.Errorf("expected partial content before the error, got %q", message.Content)
	}
}

func TestStreamMessage_BlockedPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "text/event-stream")
		writeSSE(writer, `{"promptFeedback":{"blockReason":"SAFETY"}}`)
	}))
	defer server.Close()

	stream, err := newTestProvider(server.URL).StreamMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "Hi"}},
	})
	if err != nil {
		t.Fatalf("StreamMessage returned error: %v", err)
	}
	if _, err := stream.Collect(); !errors.Is(err, ErrPromptBlocked) {
		t.Fatalf("expected ErrPromptBlocked, got %v", err)
	}
}
