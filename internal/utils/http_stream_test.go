package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestSSEScanner_Payloads runs the scanner over raw SSE input and checks the
// ordered payloads returned before io.EOF.
func TestSSEScanner_Payloads(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single event", input: "data: hello\n\n", want: []string{"hello"}},
		{name: "events in order", input: "data: first\n\ndata: second\n\ndata: third\n\n", want: []string{"first", "second", "third"}},
		{name: "multi-line data joined", input: "data: line1\ndata: line2\n\n", want: []string{"line1\nline2"}},
		{name: "comments skipped", input: ": keepalive\ndata: real\n\n", want: []string{"real"}},
		{name: "done sentinel stops", input: "data: before\n\ndata: [DONE]\n\ndata: after\n\n", want: []string{"before"}},
		{name: "empty stream", input: "", want: nil},
		{name: "trailing data without blank line", input: "data: tail", want: []string{"tail"}},
		{name: "whitespace trimmed", input: "data:   padded value   \n\n", want: []string{"padded value"}},
		{name: "other fields ignored", input: "event: update\nid: 42\nretry: 3000\ndata: payload\n\n", want: []string{"payload"}},
		{name: "blank runs collapse", input: "data: a\n\n\n\ndata: b\n\n", want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanner := NewSSEScanner(strings.NewReader(tt.input))
			var got []string
			for {
				payload, err := scanner.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				got = append(got, payload)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d payloads %q, got %d %q", len(tt.want), tt.want, len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("payload %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

// TestSSEScanner_LineTooLong verifies oversize lines surface as an error
// rather than being truncated.
func TestSSEScanner_LineTooLong(t *testing.T) {
	input := "data: " + strings.Repeat("x", maxSSELineSize+1) + "\n\n"
	scanner := NewSSEScanner(strings.NewReader(input))

	if _, err := scanner.Next(); err == nil || err == io.EOF {
		t.Fatalf("expected scanner error, got %v", err)
	}
}

// ---- DoPostStream tests -----------------------------------------------------

// TestDoPostStream_SuccessResponse_ReturnsOpenBody verifies that a 200 response
// leaves the body open for the caller to read events from.
func TestDoPostStream_SuccessResponse_ReturnsOpenBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "data: chunk1\n\ndata: [DONE]\n\n")
	}))
	defer server.Close()

	response, err := DoPostStream(context.Background(), server.Client(), server.URL, map[string]string{"q": "test"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer CloseWithLog(response.Body)

	scanner := NewSSEScanner(response.Body)
	payload, scanErr := scanner.Next()
	if scanErr != nil {
		t.Fatalf("expected nil error reading SSE, got %v", scanErr)
	}
	if payload != "chunk1" {
		t.Errorf("expected %q, got %q", "chunk1", payload)
	}
	if _, scanErr = scanner.Next(); scanErr != io.EOF {
		t.Errorf("expected io.EOF after [DONE], got %v", scanErr)
	}
}

// TestDoPostStream_SendsJSONBody verifies the request carries the marshaled
// body and the streaming Accept header.
func TestDoPostStream_SendsJSONBody(t *testing.T) {
	var capturedBody, capturedAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		capturedBody = string(raw)
		capturedAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	response, err := DoPostStream(context.Background(), server.Client(), server.URL, map[string]int{"n": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	CloseWithLog(response.Body)

	if capturedBody != `{"n":1}` {
		t.Errorf("expected body %q, got %q", `{"n":1}`, capturedBody)
	}
	if capturedAccept != "text/event-stream" {
		t.Errorf("expected Accept text/event-stream, got %q", capturedAccept)
	}
}

// TestDoPostStream_NonTwoxxResponse_ReturnsError verifies that a non-2xx
// status is reported as ErrHTTPStatus with the code and body in the message.
func TestDoPostStream_NonTwoxxResponse_ReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := DoPostStream(context.Background(), server.Client(), server.URL, map[string]string{})
	if err == nil {
		t.Fatal("expected error for non-2xx response, got nil")
	}
	if !errors.Is(err, ErrHTTPStatus) {
		t.Errorf("expected ErrHTTPStatus, got %v", err)
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Errorf("expected status and body in error, got: %v", err)
	}
}

// TestDoPostStream_ContextCancellation_ReturnsError verifies that a
// pre-cancelled context fails the request.
func TestDoPostStream_ContextCancellation_ReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cancelledCtx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := DoPostStream(cancelledCtx, server.Client(), server.URL, map[string]string{}); err == nil {
		t.Fatal("expected error for cancelled context, got nil")
	}
}

// TestDoPostStream_NetworkError_ReturnsError verifies that an unreachable
// server causes a wrapped error.
func TestDoPostStream_NetworkError_ReturnsError(t *testing.T) {
	if _, err := DoPostStream(context.Background(), nil, "http://127.0.0.1:1", map[string]string{}); err == nil {
		t.Fatal("expected network error, got nil")
	}
}

// TestDoPostStream_CustomHeader_IsApplied verifies HeaderOption values reach the server.
func TestDoPostStream_CustomHeader_IsApplied(t *testing.T) {
	const customHeaderKey = "x-goog-api-key"
	const customHeaderValue = "provider-token-123"
	var capturedHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedHeader = r.Header.Get(customHeaderKey)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	response, err := DoPostStream(
		context.Background(),
		server.Client(),
		server.URL,
		map[string]string{},
		HeaderOption{Key: customHeaderKey, Value: customHeaderValue},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	CloseWithLog(response.Body)

	if capturedHeader != customHeaderValue {
		t.Errorf("expected custom header %q, got %q", customHeaderValue, capturedHeader)
	}
}
