// Package ai holds the provider-agnostic chat types shared by the transport,
// the turn driver and the session: [ChatRequest], [Message], [ToolCall],
// [ToolResult], and the chunk stream [ChatStream] produced by a
// [StreamProvider]. Provider packages such as gemini map these types to
// their wire format.
package ai
