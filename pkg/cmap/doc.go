// Package cmap provides a concurrent map partitioned into shards.
//
// Keys are routed to a shard with an unseeded murmur3 hash modulo the shard
// count, so a key's shard never changes for the lifetime of a Map (or
// between processes). Each shard has its own mutex; operations on keys in
// different shards never contend.
//
//   - Sharding: shard count fixed at construction
//   - Locking: one sync.Mutex per shard, held only across the map access
//   - Iteration: shard by shard, not a consistent snapshot
//
// Usage:
//
//	m := cmap.NewWithShards[[]byte](32)
//	m.Set("key", value)
//	val, ok := m.Get("key")
//
// A LockHook can be installed to observe lock acquisition; tests use it to
// show that shards make progress independently.
package cmap
