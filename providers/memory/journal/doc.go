// Package journal implements memory.Store as two append-only JSON
// collections, each kept in a memory.Container.
//
// The profile collection interleaves facts and mannerisms in append order;
// ReadProfile partitions it on read. Self-traits live in their own
// collection and are deduplicated by exact text. A container holding
// something other than a JSON array reads as empty, is reported once, and is
// overwritten by the next append.
package journal
