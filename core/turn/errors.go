package turn

import "errors"

var (
	// ErrToolExecutionFailed means a dispatch failed twice in a row. The
	// turn is abandoned; the session stays usable.
	ErrToolExecutionFailed = errors.New("tool execution failed")

	// ErrTransportUnavailable means the model could not be reached, either
	// when opening a stream or while reading one.
	ErrTransportUnavailable = errors.New("transport unavailable")

	// ErrToolLoopExceeded means the model kept calling tools past the pass cap.
	ErrToolLoopExceeded = errors.New("tool loop exceeded")
)
