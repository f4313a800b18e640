// Package gemini implements [ai.StreamProvider] for Google's Gemini API using
// the streamGenerateContent endpoint with alt=sse.
//
// History messages map to Gemini contents, tool declarations to
// functionDeclarations, and tool results to functionResponse parts of the form
// {"result": payload}. Each SSE event becomes one [ai.Chunk]; function calls
// get stream-local IDs (call_1, call_2, ...).
//
// [New] reads GEMINI_API_KEY (falling back to GOOGLE_API_KEY) and
// GEMINI_API_BASE_URL.
package gemini
