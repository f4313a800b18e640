// Package turn drives one logical turn of a tool-augmented streaming chat.
//
// A turn is one or more passes. Each pass consumes a chunk stream to the
// end, collecting visible text and function calls. When the pass ends with
// pending calls they are dispatched in detection order, all results are sent
// back in one message, and the next pass reads the model's continuation.
// The turn is done when a pass produces no calls.
//
//	driver := turn.New(dispatcher, turn.WithTextSink(func(total string) { render(total) }))
//	result, err := driver.Run(ctx, chat, firstStream)
package turn
