package middleware

import (
	"github.com/leofalp/cllm/providers/ai"
)

// StreamMiddleware wraps a StreamProvider to observe or alter its requests
// and the streams it returns.
type StreamMiddleware func(next ai.StreamProvider) ai.StreamProvider

// Chain wraps provider with middlewares. The first middleware is the
// outermost, so it sees a request first and a stream last.
func Chain(provider ai.StreamProvider, middlewares ...StreamMiddleware) ai.StreamProvider {
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] != nil {
			provider = middlewares[i](provider)
		}
	}
	return provider
}
