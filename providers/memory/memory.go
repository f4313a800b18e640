package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/cllm/providers/ai"
)

// ErrInvalidArgument reports a rejected mutation: an unknown kind or empty text.
var ErrInvalidArgument = errors.New("invalid argument")

// Kind partitions the user profile collection.
type Kind string

const (
	KindFact      Kind = "fact"
	KindMannerism Kind = "mannerism"
)

// ParseKind accepts exactly "fact" or "mannerism".
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindFact, KindMannerism:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: entry type %q", ErrInvalidArgument, s)
	}
}

// Outcome is the result of AppendSelfTrait.
type Outcome int

const (
	Added Outcome = iota
	Skipped
)

// String returns "added" or "skipped".
func (o Outcome) String() string {
	if o == Skipped {
		return "skipped"
	}
	return "added"
}

// Profile is the user side of the memory, each list in append order.
type Profile struct {
	Facts      []string `json:"facts"`
	Mannerisms []string `json:"mannerisms"`
}

// Store is the long-term memory the tools read and write. Mutations are
// durable before they return, and a read after a write in the same process
// observes it.
type Store interface {
	// AppendFactOrMannerism appends text under kind. Facts and mannerisms
	// are never deduplicated.
	AppendFactOrMannerism(ctx context.Context, kind Kind, text string) error
	// AppendSelfTrait appends text unless an identical trait exists, in
	// which case it returns Skipped and writes nothing.
	AppendSelfTrait(ctx context.Context, text string) (Outcome, error)
	ReadProfile(ctx context.Context) (Profile, error)
	ReadSelfTraits(ctx context.Context) ([]string, error)
}

// Container is one durable byte slot holding a serialized collection.
type Container interface {
	// Name identifies the container in logs.
	Name() string
	// Load returns the stored bytes, creating the container with an empty
	// collection on first access.
	Load(ctx context.Context) ([]byte, error)
	// Store replaces the contents atomically: a reader sees the old or the
	// new bytes, never a mix.
	Store(ctx context.Context, data []byte) error
}

// History is the ordered chat transcript of one conversation.
type History interface {
	AppendMessage(ctx context.Context, message *ai.Message)
	AllMessages(ctx context.Context) ([]ai.Message, error)
	Count(ctx context.Context) (int, error)
	// Truncate drops every message after the first n.
	Truncate(ctx context.Context, n int)
	ClearMessages(ctx context.Context)
}
