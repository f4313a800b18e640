// Package memory defines the long-term memory the assistant's tools work on:
// facts and mannerisms about the user, and the assistant's own self-traits.
//
// [Store] is the contract the tool dispatcher and prompt assembler use. The
// journal package implements it over two [Container] slots, one per
// collection, whose backends live in filestore, redisstore and inmemory.
// [History] is the per-conversation chat transcript, implemented by
// inmemory.ArrayMemory.
package memory
