package observability

// --- Attribute keys ---

const (
	AttrSessionID = "session.id"
	AttrTurnID    = "turn.id"
	AttrTurnPass  = "turn.pass"

	// AttrTurnPasses is the number of model passes a finished turn took.
	AttrTurnPasses = "turn.passes"

	AttrLLMProvider = "llm.provider"
	AttrLLMModel    = "llm.model"
	AttrLLMEndpoint = "llm.endpoint"

	// AttrRequestMessagesCount is the history length sent with a request.
	AttrRequestMessagesCount = "request.messages_count"
	AttrRequestToolsCount    = "request.tools_count"

	AttrToolName     = "tool.name"
	AttrToolCallID   = "tool.call_id"
	AttrToolStatus   = "tool.status"
	AttrToolDuration = "tool.duration"
	AttrToolAttempt  = "tool.attempt"

	AttrMemoryContainer  = "memory.container"
	AttrMemoryCollection = "memory.collection"
	AttrMemoryEntries    = "memory.entries"

	AttrHTTPMethod          = "http.method"
	AttrHTTPStatusCode      = "http.status_code"
	AttrHTTPRequestBodySize = "http.request.body.size"

	AttrError    = "error"
	AttrDuration = "duration"
)

// --- Span names ---

const (
	SpanSessionSend = "session.send"
	SpanTurnRun     = "turn.run"
	SpanToolCall    = "tool.call"
	SpanAsk         = "session.ask"
)

// --- Event names ---

const (
	EventPassStart      = "turn.pass.start"
	EventPassEnd        = "turn.pass.end"
	EventToolDetected   = "tool.detected"
	EventToolResult     = "tool.result"
	EventMemoryAppend   = "memory.append"
	EventMemorySkip     = "memory.skip"
	EventMemoryCorrupt  = "memory.corrupt"
	EventHistoryRewind  = "history.rewind"
	EventHTTPRequest    = "http.request.prepared"
	EventHTTPError      = "http.request.error"
	EventHTTPStreamOpen = "http.stream.open"
)

// --- Metric names ---

const (
	MetricTurnPasses     = "cllm.turn.passes"
	MetricToolCalls      = "cllm.tool.calls"
	MetricToolFailures   = "cllm.tool.failures"
	MetricTurnDuration   = "cllm.turn.duration"
	MetricMemoryCorrupts = "cllm.memory.corrupt"
)
