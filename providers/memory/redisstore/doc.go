// Package redisstore keeps memory collections in Redis, one string key per
// collection, so several machines can share one assistant memory.
package redisstore
