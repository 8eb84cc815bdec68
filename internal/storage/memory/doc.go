// Package memory provides the in-memory sharded store behind shardkv.
//
// Keys map to byte values. The key space is split across a fixed number of
// shards (pkg/cmap), each guarded by its own mutex, so operations on keys
// in different shards never wait for each other.
//
// Features:
//
//   - Sharded Storage: shard count fixed at construction
//   - Value Isolation: values are copied in and out, callers never share
//     the stored bytes
//   - Statistics: per-shard key counts for /stats and Prometheus
//
// Thread Safety:
//
// All operations are thread-safe. A shard lock is held only across the map
// access itself, never across I/O.
package memory
