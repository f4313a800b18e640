package utils

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/leofalp/cllm/providers/observability"
)

// ErrHTTPStatus is wrapped by DoPostStream when the server answers with a non-2xx status.
var ErrHTTPStatus = errors.New("unexpected HTTP status")

// maxSSELineSize caps a single SSE line. Function-call arguments can be long,
// so the bufio default of 64 KiB is not enough.
const maxSSELineSize = 1 * 1024 * 1024

// maxErrorBodySize caps how much of an error response is read into the returned error.
const maxErrorBodySize int64 = 64 * 1024

// HeaderOption is an extra request header applied after the defaults.
type HeaderOption struct {
	Key   string
	Value string
}

// DoPostStream marshals body as JSON, POSTs it to url and returns the response
// with the body still open for SSE reading. The caller owns the body and must
// close it. Non-2xx responses are drained, closed and returned as an error
// wrapping ErrHTTPStatus.
func DoPostStream(ctx context.Context, client *http.Client, url string, body any, headers ...HeaderOption) (*http.Response, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshaling body: %w", err)
	}

	if span != nil {
		span.AddEvent(observability.EventHTTPRequest,
			observability.String(observability.AttrHTTPMethod, http.MethodPost),
			observability.Int(observability.AttrHTTPRequestBodySize, len(jsonBody)),
		)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "text/event-stream")
	for _, header := range headers {
		request.Header.Set(header.Key, header.Value)
	}

	start := time.Now()
	response, err := httpClient.Do(request)
	elapsed := time.Since(start)
	if err != nil {
		if span != nil {
			span.AddEvent(observability.EventHTTPError,
				observability.Error(err),
				observability.Duration(observability.AttrDuration, elapsed),
			)
		}
		return nil, fmt.Errorf("error sending stream request: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		defer CloseWithLog(response.Body)
		errorBody, readErr := io.ReadAll(io.LimitReader(response.Body, maxErrorBodySize))
		if readErr != nil {
			return nil, fmt.Errorf("%w %d (body unreadable: %v)", ErrHTTPStatus, response.StatusCode, readErr)
		}
		return nil, fmt.Errorf("%w %d: %s", ErrHTTPStatus, response.StatusCode, strings.TrimSpace(string(errorBody)))
	}

	if span != nil {
		span.AddEvent(observability.EventHTTPStreamOpen,
			observability.Int(observability.AttrHTTPStatusCode, response.StatusCode),
			observability.Duration(observability.AttrDuration, elapsed),
		)
	}

	return response, nil
}

// CloseWithLog closes c and logs, rather than returns, any error.
func CloseWithLog(c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		slog.Warn("failed to close stream", "error", err.Error())
	}
}

// SSEScanner reads Server-Sent Events data payloads from an io.Reader.
type SSEScanner struct {
	scanner *bufio.Scanner
}

// NewSSEScanner returns a scanner reading from reader. Lines longer than
// 1 MiB make Next fail with an error wrapping bufio.ErrTooLong.
func NewSSEScanner(reader io.Reader) *SSEScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineSize)
	return &SSEScanner{scanner: scanner}
}

// Next returns the next event's data payload. Consecutive data lines of one
// event are joined with "\n"; comments and other fields are skipped. It
// returns io.EOF at end of input or on a "[DONE]" sentinel.
func (s *SSEScanner) Next() (string, error) {
	var dataLines []string

	for s.scanner.Scan() {
		line := s.scanner.Text()

		switch {
		case line == "":
			if len(dataLines) > 0 {
				return strings.Join(dataLines, "\n"), nil
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				return "", io.EOF
			}
			dataLines = append(dataLines, data)
		}
	}

	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("SSE scanner error: %w", err)
	}
	if len(dataLines) > 0 {
		return strings.Join(dataLines, "\n"), nil
	}
	return "", io.EOF
}
