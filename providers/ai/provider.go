package ai

import (
	"context"
)

// StreamProvider is the outbound model transport.
type StreamProvider interface {
	// StreamMessage sends the request and returns the response as a chunk
	// stream. Failures before the stream opens (auth, network, bad request)
	// are returned directly; failures during streaming come through the iterator.
	StreamMessage(ctx context.Context, request ChatRequest) (*ChatStream, error)
}

// StreamFunc adapts a function to StreamProvider.
type StreamFunc func(ctx context.Context, request ChatRequest) (*ChatStream, error)

// StreamMessage calls f.
func (f StreamFunc) StreamMessage(ctx context.Context, request ChatRequest) (*ChatStream, error) {
	return f(ctx, request)
}
