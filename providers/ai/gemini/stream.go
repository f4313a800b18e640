package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/leofalp/cllm/internal/utils"
	"github.com/leofalp/cllm/providers/ai"
	"github.com/leofalp/cllm/providers/observability"
)

var _ ai.StreamProvider = (*Provider)(nil)

// StreamMessage posts the request to streamGenerateContent?alt=sse and
// returns the events as a chunk stream.
func (p *Provider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	model := request.Model
	if model == "" {
		model = p.defaultModel
	}

	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, "gemini"),
			observability.String(observability.AttrLLMModel, model),
		)
	}
	if observer != nil {
		observer.Trace(ctx, "gemini streaming request",
			observability.String(observability.AttrLLMEndpoint, p.baseURL),
			observability.String(observability.AttrLLMModel, model),
			observability.Int(observability.AttrRequestMessagesCount, len(request.Messages)),
			observability.Int(observability.AttrRequestToolsCount, len(request.Tools)),
		)
	}

	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	body, err := requestToGemini(request)
	if err != nil {
		return nil, fmt.Errorf("gemini: build request: %w", err)
	}

	streamURL := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", p.baseURL, model)
	httpResponse, err := utils.DoPostStream(ctx, p.client, streamURL, body,
		utils.HeaderOption{Key: "x-goog-api-key", Value: p.apiKey},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	scanner := utils.NewSSEScanner(httpResponse.Body)

	iterator := func(yield func(ai.Chunk, error) bool) {
		defer utils.CloseWithLog(httpResponse.Body)

		calls := 0
		nextCallID := func() string {
			calls++
			return fmt.Sprintf("call_%d", calls)
		}

		for {
			if ctx.Err() != nil {
				yield(ai.Chunk{}, ctx.Err())
				return
			}

			payload, sseErr := scanner.Next()
			if sseErr == io.EOF {
				return
			}
			if sseErr != nil {
				yield(ai.Chunk{}, fmt.Errorf("gemini: read stream: %w", sseErr))
				return
			}

			var response generateContentResponse
			if err := json.Unmarshal([]byte(payload), &response); err != nil {
				yield(ai.Chunk{}, fmt.Errorf("gemini: decode stream event: %w", err))
				return
			}

			chunk, err := chunkFromGemini(&response, nextCallID)
			if err != nil {
				yield(ai.Chunk{}, err)
				return
			}

			if observer != nil && response.UsageMetadata != nil {
				observer.Trace(ctx, "gemini usage",
					observability.Int("llm.tokens.prompt", response.UsageMetadata.PromptTokenCount),
					observability.Int("llm.tokens.completion", response.UsageMetadata.CandidatesTokenCount),
					observability.Int("llm.tokens.total", response.UsageMetadata.TotalTokenCount),
				)
			}

			if !yield(chunk, nil) {
				return
			}
		}
	}

	return ai.NewChatStream(iterator), nil
}
