package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leofalp/cllm/providers/ai"
	"github.com/leofalp/cllm/providers/memory"
	"github.com/leofalp/cllm/providers/observability"
)

// Payload statuses.
const (
	StatusSuccess = "success"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// StatusPayload is the result body of the mutating tools.
type StatusPayload struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

const (
	msgInvalidEntry = "Invalid entry type or missing entry"
	msgInvalidTrait = "Trait must be a non-empty string."
	msgTraitAdded   = "Personality trait added."
	msgTraitSkipped = "Trait already recorded."
)

// Dispatcher executes tool calls against a memory store.
type Dispatcher struct {
	store    memory.Store
	observer observability.Provider
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithObserver sets the observability provider used for debug logs.
func WithObserver(observer observability.Provider) Option {
	return func(d *Dispatcher) {
		d.observer = observability.OrNop(observer)
	}
}

// NewDispatcher returns a Dispatcher over store.
func NewDispatcher(store memory.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{store: store, observer: observability.Nop{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch executes call and returns the result to send back to the model.
//
// Bad arguments and unknown tools are answered with an error payload and a
// nil error; the model sees them and the turn goes on. A non-nil error means
// the store failed and nothing useful can be reported.
func (d *Dispatcher) Dispatch(ctx context.Context, call ai.ToolCall) (ai.ToolResult, error) {
	result := ai.ToolResult{CallID: call.ID, Name: call.Name}

	decoded, err := Decode(call)
	switch {
	case errors.Is(err, ErrUnknownTool):
		d.observer.Debug(ctx, "unknown tool requested", observability.String(observability.AttrToolName, call.Name))
		result.Payload = StatusPayload{Status: StatusError, Message: "Unknown tool " + call.Name}
		return result, nil
	case errors.Is(err, memory.ErrInvalidArgument):
		d.observer.Debug(ctx, "tool arguments rejected",
			observability.String(observability.AttrToolName, call.Name),
			observability.Error(err),
		)
		result.Payload = invalidPayload(call.Name)
		return result, nil
	case err != nil:
		return result, err
	}

	payload, err := d.execute(ctx, decoded)
	if err != nil {
		if errors.Is(err, memory.ErrInvalidArgument) {
			result.Payload = invalidPayload(call.Name)
			return result, nil
		}
		return result, fmt.Errorf("%s: %w", call.Name, err)
	}
	result.Payload = payload
	return result, nil
}

func (d *Dispatcher) execute(ctx context.Context, call Call) (any, error) {
	switch c := call.(type) {
	case UpdateUser:
		kind := memory.Kind(c.EntryType)
		if err := d.store.AppendFactOrMannerism(ctx, kind, c.Entry); err != nil {
			return nil, err
		}
		return StatusPayload{Status: StatusSuccess, Message: capitalize(c.EntryType) + " added."}, nil

	case GetUserProfile:
		return d.store.ReadProfile(ctx)

	case UpdateSelfPersonality:
		outcome, err := d.store.AppendSelfTrait(ctx, c.Trait)
		if err != nil {
			return nil, err
		}
		if outcome == memory.Skipped {
			return StatusPayload{Status: StatusSkipped, Message: msgTraitSkipped}, nil
		}
		return StatusPayload{Status: StatusSuccess, Message: msgTraitAdded}, nil

	default:
		return nil, fmt.Errorf("%w %s", ErrUnknownTool, call.ToolName())
	}
}

func invalidPayload(name string) StatusPayload {
	if name == NameUpdateSelfPersonality {
		return StatusPayload{Status: StatusError, Message: msgInvalidTrait}
	}
	return StatusPayload{Status: StatusError, Message: msgInvalidEntry}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
