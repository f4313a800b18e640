// Package session holds a conversation with the model across turns.
//
// A Session is created cheaply and initialized on its first Send: the
// system prompt is built once from the memory store and kept for the life
// of the conversation, together with the tool declarations. Each Send hands
// the reply stream to a turn.Driver, which executes tool calls until the
// model answers without one.
//
//	s, err := session.New(gemini.New(), store, session.WithTextSink(render))
//	reply, err := s.Send(ctx, "hi, I'm Sam")
//
// Ask is the stateless counterpart for one-off questions.
package session
