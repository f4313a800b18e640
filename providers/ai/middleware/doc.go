// Package middleware provides composable wrappers for ai.StreamProvider.
//
// A StreamMiddleware receives the next provider and returns one that wraps
// it; Chain applies a list of them with the first as the outermost layer.
//
//	provider := middleware.Chain(gemini.New(),
//	    middleware.NewLoggingMiddleware(slog.Default(), middleware.LogLevelStandard),
//	)
package middleware
