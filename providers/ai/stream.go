package ai

import (
	"iter"
	"strings"
)

// PartKind tags the content of a Part.
type PartKind string

const (
	PartText         PartKind = "text"
	PartFunctionCall PartKind = "function_call"
)

// Part is one element of a streamed chunk: a text delta or a complete function call.
type Part struct {
	Kind PartKind
	Text string
	Call *ToolCall
}

// TextPart returns a text Part.
func TextPart(text string) Part {
	return Part{Kind: PartText, Text: text}
}

// CallPart returns a function-call Part.
func CallPart(call ToolCall) Part {
	return Part{Kind: PartFunctionCall, Call: &call}
}

// Chunk is one increment of model output. It may carry no parts at all.
type Chunk struct {
	Parts []Part
}

// ChatStream is a finite, one-shot, forward-only sequence of chunks.
//
// Callers must consume it, by ranging over Iter (breaking out early is fine)
// or by calling Collect; the transport may hold an open HTTP body until then.
type ChatStream struct {
	iterator iter.Seq2[Chunk, error]
}

// NewChatStream wraps an iterator. A non-nil error yielded by the iterator
// ends the stream.
func NewChatStream(iterator iter.Seq2[Chunk, error]) *ChatStream {
	return &ChatStream{iterator: iterator}
}

// NewStaticStream returns a stream that yields chunks in order.
func NewStaticStream(chunks ...Chunk) *ChatStream {
	return NewChatStream(func(yield func(Chunk, error) bool) {
		for _, chunk := range chunks {
			if !yield(chunk, nil) {
				return
			}
		}
	})
}

// Iter returns the underlying iterator.
//
//	for chunk, err := range stream.Iter() {
//	    if err != nil { ... }
//	    for _, part := range chunk.Parts { ... }
//	}
func (s *ChatStream) Iter() iter.Seq2[Chunk, error] {
	return s.iterator
}

// Tap returns a stream that calls onChunk for every chunk before passing it
// on, and onDone once when iteration stops for any reason, with the error that
// ended it (nil on normal exhaustion or an early break). Either callback may be nil.
func (s *ChatStream) Tap(onChunk func(Chunk), onDone func(error)) *ChatStream {
	return NewChatStream(func(yield func(Chunk, error) bool) {
		var streamErr error
		if onDone != nil {
			defer func() { onDone(streamErr) }()
		}
		for chunk, err := range s.iterator {
			if err != nil {
				streamErr = err
				yield(Chunk{}, err)
				return
			}
			if onChunk != nil {
				onChunk(chunk)
			}
			if !yield(chunk, nil) {
				return
			}
		}
	})
}

// Collect drains the stream into a single assistant Message: the
// concatenated text and every function call in order. On a mid-stream error
// the partial message is returned with the error.
func (s *ChatStream) Collect() (Message, error) {
	message := Message{Role: RoleAssistant}
	var text strings.Builder

	for chunk, err := range s.iterator {
		if err != nil {
			message.Content = text.String()
			return message, err
		}
		for _, part := range chunk.Parts {
			switch part.Kind {
			case PartText:
				text.WriteString(part.Text)
			case PartFunctionCall:
				if part.Call != nil {
					message.ToolCalls = append(message.ToolCalls, *part.Call)
				}
			}
		}
	}

	message.Content = text.String()
	return message, nil
}
