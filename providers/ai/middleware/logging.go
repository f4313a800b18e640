package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/leofalp/cllm/internal/utils"
	"github.com/leofalp/cllm/providers/ai"
)

// LogLevel controls how much detail the logging middleware emits per request.
type LogLevel int

const (
	// LogLevelMinimal logs the model and the stream duration.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds message, tool, chunk and function call counts.
	LogLevelStandard

	// LogLevelVerbose adds the last request message and the reply text,
	// truncated to 500 characters.
	//
	// WARNING: this writes user conversations to the log. Use it for local
	// debugging only.
	LogLevelVerbose
)

const truncateLen = 500

// NewLoggingMiddleware logs every stream request when it is sent and again
// when its stream ends, with the outcome.
//
// The logger must not be nil; use slog.Default() if nothing else is configured.
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel) StreamMiddleware {
	return func(next ai.StreamProvider) ai.StreamProvider {
		return ai.StreamFunc(func(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
			logger.InfoContext(ctx, "llm stream", requestAttrs(request, level)...)

			start := time.Now()
			stream, err := next.StreamMessage(ctx, request)
			if err != nil {
				logger.ErrorContext(ctx, "llm stream failed",
					slog.String("model", request.Model),
					slog.Duration("duration", time.Since(start)),
					slog.String("error", err.Error()),
				)
				return nil, err
			}
			if stream == nil {
				return nil, nil
			}

			var (
				chunks int
				calls  int
				text   strings.Builder
			)
			onChunk := func(chunk ai.Chunk) {
				chunks++
				for _, part := range chunk.Parts {
					switch part.Kind {
					case ai.PartText:
						text.WriteString(part.Text)
					case ai.PartFunctionCall:
						calls++
					}
				}
			}
			onDone := func(err error) {
				elapsed := time.Since(start)
				if err != nil {
					logger.ErrorContext(ctx, "llm stream failed",
						slog.String("model", request.Model),
						slog.Duration("duration", elapsed),
						slog.String("error", err.Error()),
					)
					return
				}

				attrs := []any{
					slog.String("model", request.Model),
					slog.Duration("duration", elapsed),
				}
				if level >= LogLevelStandard {
					attrs = append(attrs,
						slog.Int("chunks", chunks),
						slog.Int("function_calls", calls),
						slog.Int("text_length", text.Len()),
					)
				}
				if level >= LogLevelVerbose && text.Len() > 0 {
					attrs = append(attrs, slog.String("response_content", utils.TruncateString(text.String(), truncateLen)))
				}
				logger.InfoContext(ctx, "llm stream completed", attrs...)
			}

			return stream.Tap(onChunk, onDone), nil
		})
	}
}

// requestAttrs describes an outgoing request at the given verbosity.
func requestAttrs(request ai.ChatRequest, level LogLevel) []any {
	attrs := []any{
		slog.String("model", request.Model),
	}

	if level >= LogLevelStandard {
		attrs = append(attrs,
			slog.Int("message_count", len(request.Messages)),
			slog.Int("tools_count", len(request.Tools)),
		)
	}

	if level >= LogLevelVerbose && len(request.Messages) > 0 {
		last := request.Messages[len(request.Messages)-1]
		attrs = append(attrs,
			slog.String("last_message_role", string(last.Role)),
			slog.String("last_message_content", utils.TruncateString(last.Content, truncateLen)),
		)
	}

	return attrs
}
