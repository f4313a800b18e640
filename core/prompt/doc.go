// Package prompt builds the system prompt of a conversation from the
// current memory: user facts, user mannerisms and the assistant's own traits.
package prompt
