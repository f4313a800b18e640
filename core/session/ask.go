package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/leofalp/cllm/providers/ai"
	"github.com/leofalp/cllm/providers/observability"
)

// Ask sends a single prompt with no system prompt, tools or history and
// returns the reply. WithModel, WithTextSink and WithObserver apply; the
// other options are ignored.
func Ask(ctx context.Context, provider ai.StreamProvider, prompt string, opts ...Option) (string, error) {
	o := applyOptions(opts...)

	ctx = observability.ContextWithObserver(ctx, o.observer)
	ctx, span := o.observer.StartSpan(ctx, observability.SpanAsk, observability.String(observability.AttrLLMModel, o.model))
	defer span.End()

	stream, err := provider.StreamMessage(ctx, ai.ChatRequest{
		Model:    o.model,
		Messages: []ai.Message{{Role: ai.RoleUser, Content: prompt}},
	})
	if err == nil && stream == nil {
		err = errNoStream
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrTransportUnavailable, err)
		span.RecordError(err)
		span.SetStatus(observability.StatusError, err.Error())
		return "", err
	}

	var total strings.Builder
	for chunk, err := range stream.Iter() {
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrTransportUnavailable, err)
			span.RecordError(err)
			span.SetStatus(observability.StatusError, err.Error())
			return total.String(), err
		}
		for _, part := range chunk.Parts {
			if part.Kind == ai.PartText {
				total.WriteString(part.Text)
			}
		}
		if o.textSink != nil {
			o.textSink(total.String())
		}
	}

	span.SetStatus(observability.StatusOK, "")
	return total.String(), nil
}
