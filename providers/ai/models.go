package ai

import (
	"github.com/leofalp/cllm/internal/jsonschema"
)

// MessageRole is the author of a message in the chat history.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool" // results of the function calls of the preceding assistant message
)

// ChatRequest is one streamed request: the whole history plus the fixed
// system prompt and tool declarations of the conversation.
type ChatRequest struct {
	Model        string            `json:"model,omitempty"`
	SystemPrompt string            `json:"system_prompt,omitempty"`
	Messages     []Message         `json:"messages"`
	Tools        []ToolDescription `json:"tools,omitempty"`
}

// ToolDescription advertises a callable function to the model. Parameters is
// nil for functions that take no arguments.
type ToolDescription struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// Message is a single history entry.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`

	// ToolCalls are the function calls requested in an assistant message.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	// ToolResults answer, in order, the calls of the previous assistant message.
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// ToolCall is a function call emitted by the model. Arguments holds the raw
// JSON object as received.
type ToolCall struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
}

// ToolResult is the outcome of one ToolCall, sent back to the model.
// Payload must marshal to JSON.
type ToolResult struct {
	CallID  string `json:"call_id,omitempty"`
	Name    string `json:"name"`
	Payload any    `json:"payload"`
}
