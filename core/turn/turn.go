package turn

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/cllm/providers/ai"
	"github.com/leofalp/cllm/providers/observability"
)

// Dispatcher executes one tool call.
type Dispatcher interface {
	Dispatch(ctx context.Context, call ai.ToolCall) (ai.ToolResult, error)
}

// Conversation is the chat the turn runs in. SendToolResults answers the
// calls of the last pass and opens the stream of the next one.
type Conversation interface {
	SendToolResults(ctx context.Context, results []ai.ToolResult) (*ai.ChatStream, error)
}

// Result describes a finished turn.
type Result struct {
	// Text is the visible output of every pass, concatenated.
	Text string
	// Passes counts the streams consumed, the first one included.
	Passes int
	// ToolCalls lists the dispatched calls in dispatch order.
	ToolCalls []ai.ToolCall
}

// Driver runs turns: it consumes a stream, dispatches the tool calls found
// in it, sends the results back and repeats until a pass has no calls.
type Driver struct {
	dispatcher   Dispatcher
	maxPasses    int
	textSink     func(total string)
	toolNotifier func(name string)
	observer     observability.Provider
}

// New returns a Driver dispatching through dispatcher.
func New(dispatcher Dispatcher, opts ...Option) *Driver {
	d := &Driver{
		dispatcher: dispatcher,
		maxPasses:  DefaultMaxPasses,
		observer:   observability.Nop{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// accumulator holds what one pass produced. It is discarded after the pass.
type accumulator struct {
	text    strings.Builder
	pending []ai.ToolCall
}

// Run drives one turn starting from first, the stream opened by the user's
// message. Calls detected in the last pass allowed by the cap are not
// dispatched; the turn ends with ErrToolLoopExceeded instead.
func (d *Driver) Run(ctx context.Context, conv Conversation, first *ai.ChatStream) (Result, error) {
	turnID := uuid.NewString()
	ctx, span := d.observer.StartSpan(ctx, observability.SpanTurnRun, observability.String(observability.AttrTurnID, turnID))
	defer span.End()

	start := time.Now()
	result, err := d.run(ctx, conv, first)

	span.SetAttributes(observability.Int(observability.AttrTurnPasses, result.Passes))
	d.observer.Counter(observability.MetricTurnPasses).Add(ctx, int64(result.Passes))
	d.observer.Histogram(observability.MetricTurnDuration).Record(ctx, time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, err.Error())
		d.observer.Error(ctx, "turn failed",
			observability.String(observability.AttrTurnID, turnID),
			observability.Int(observability.AttrTurnPasses, result.Passes),
			observability.Error(err),
		)
		return result, err
	}

	span.SetStatus(observability.StatusOK, "")
	d.observer.Debug(ctx, "turn finished",
		observability.String(observability.AttrTurnID, turnID),
		observability.Int(observability.AttrTurnPasses, result.Passes),
		observability.Int("turn.tool_calls", len(result.ToolCalls)),
	)
	return result, nil
}

func (d *Driver) run(ctx context.Context, conv Conversation, stream *ai.ChatStream) (Result, error) {
	var (
		result Result
		total  strings.Builder
	)
	span := observability.SpanOrNop(ctx)

	for pass := 1; ; pass++ {
		if stream == nil {
			return result, fmt.Errorf("%w: pass %d has no stream", ErrTransportUnavailable, pass)
		}
		result.Passes = pass
		span.AddEvent(observability.EventPassStart, observability.Int(observability.AttrTurnPass, pass))

		acc, err := d.consume(ctx, stream, &total)
		result.Text = total.String()
		if err != nil {
			return result, fmt.Errorf("%w: pass %d: %w", ErrTransportUnavailable, pass, err)
		}

		span.AddEvent(observability.EventPassEnd,
			observability.Int(observability.AttrTurnPass, pass),
			observability.Int("pass.text_length", acc.text.Len()),
			observability.Int("pass.tool_calls", len(acc.pending)),
		)

		if len(acc.pending) == 0 {
			return result, nil
		}
		if d.maxPasses > 0 && pass >= d.maxPasses {
			return result, fmt.Errorf("%w: %d passes", ErrToolLoopExceeded, d.maxPasses)
		}

		results := make([]ai.ToolResult, 0, len(acc.pending))
		for _, call := range acc.pending {
			if d.toolNotifier != nil {
				d.toolNotifier(call.Name)
			}
			toolResult, err := d.dispatch(ctx, call)
			if err != nil {
				return result, err
			}
			result.ToolCalls = append(result.ToolCalls, call)
			results = append(results, toolResult)
		}

		if err := ctx.Err(); err != nil {
			return result, err
		}
		stream, err = conv.SendToolResults(ctx, results)
		if err != nil {
			return result, fmt.Errorf("%w: send tool results: %w", ErrTransportUnavailable, err)
		}
	}
}

// consume reads stream to exhaustion. Text goes to the pass accumulator and
// to total; the sink sees total after every chunk.
func (d *Driver) consume(ctx context.Context, stream *ai.ChatStream, total *strings.Builder) (*accumulator, error) {
	acc := &accumulator{}
	span := observability.SpanOrNop(ctx)

	for chunk, err := range stream.Iter() {
		if err != nil {
			return acc, err
		}
		for _, part := range chunk.Parts {
			switch part.Kind {
			case ai.PartText:
				acc.text.WriteString(part.Text)
				total.WriteString(part.Text)
			case ai.PartFunctionCall:
				if part.Call == nil {
					continue
				}
				acc.pending = append(acc.pending, *part.Call)
				span.AddEvent(observability.EventToolDetected,
					observability.String(observability.AttrToolName, part.Call.Name),
					observability.String(observability.AttrToolCallID, part.Call.ID),
				)
			}
		}
		if d.textSink != nil {
			d.textSink(total.String())
		}
	}
	return acc, nil
}

// dispatch retries a failed call once.
func (d *Driver) dispatch(ctx context.Context, call ai.ToolCall) (ai.ToolResult, error) {
	d.observer.Counter(observability.MetricToolCalls).Add(ctx, 1, observability.String(observability.AttrToolName, call.Name))
	turnSpan := observability.SpanOrNop(ctx)

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		callCtx, span := d.observer.StartSpan(ctx, observability.SpanToolCall,
			observability.String(observability.AttrToolName, call.Name),
			observability.String(observability.AttrToolCallID, call.ID),
			observability.Int(observability.AttrToolAttempt, attempt),
		)
		start := time.Now()
		result, err := d.dispatcher.Dispatch(callCtx, call)
		span.SetAttributes(observability.Duration(observability.AttrToolDuration, time.Since(start)))

		if err == nil {
			span.SetStatus(observability.StatusOK, "")
			span.End()
			turnSpan.AddEvent(observability.EventToolResult,
				observability.String(observability.AttrToolName, call.Name),
				observability.String(observability.AttrToolStatus, "ok"),
			)
			return result, nil
		}

		span.RecordError(err)
		span.SetStatus(observability.StatusError, err.Error())
		span.End()
		lastErr = err
		d.observer.Warn(ctx, "tool dispatch failed",
			observability.String(observability.AttrToolName, call.Name),
			observability.Int(observability.AttrToolAttempt, attempt),
			observability.Error(err),
		)
		if ctx.Err() != nil {
			break
		}
	}

	d.observer.Counter(observability.MetricToolFailures).Add(ctx, 1, observability.String(observability.AttrToolName, call.Name))
	return ai.ToolResult{}, fmt.Errorf("%w: %s: %w", ErrToolExecutionFailed, call.Name, lastErr)
}
