// Package inmemory provides process-local memory backends: [ArrayMemory], a
// chat history, and [Container], a byte slot for the journal store.
package inmemory
