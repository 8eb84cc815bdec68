// Package memory provides the in-memory sharded store behind shardkv.
package memory

import (
	"github.com/yndnr/shardkv/pkg/cmap"
)

// Store is a sharded in-memory key-value store.
type Store struct {
	data *cmap.Map[[]byte]
}

// Option configures the Store.
type Option func(*options)

type options struct {
	shardCount int
	lockHook   cmap.LockHook
}

// WithShardCount sets the number of shards. Non-positive values fall back
// to cmap.DefaultShardCount.
func WithShardCount(n int) Option {
	return func(o *options) {
		o.shardCount = n
	}
}

// WithLockHook observes every shard lock acquisition.
func WithLockHook(h cmap.LockHook) Option {
	return func(o *options) {
		o.lockHook = h
	}
}

// New creates a new in-memory store.
func New(opts ...Option) *Store {
	o := options{shardCount: cmap.DefaultShardCount}
	for _, opt := range opts {
		opt(&o)
	}

	var mapOpts []cmap.Option
	if o.lockHook != nil {
		mapOpts = append(mapOpts, cmap.WithLockHook(o.lockHook))
	}

	return &Store{
		data: cmap.NewWithShards[[]byte](o.shardCount, mapOpts...),
	}
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(key string) ([]byte, bool) {
	v, ok := s.data.Get(key)
	if !ok {
		return nil, false
	}
	// Stored slices are never modified in place, so the copy can happen
	// after the shard lock is released.
	return clone(v), true
}

// Set stores a copy of value under key, replacing any previous value.
func (s *Store) Set(key string, value []byte) {
	s.data.Set(key, clone(value))
}

// Delete removes keys and returns how many existed.
func (s *Store) Delete(keys ...string) int {
	n := 0
	for _, k := range keys {
		if s.data.Delete(k) {
			n++
		}
	}
	return n
}

// Exists returns how many of keys are present. A key named twice counts
// twice.
func (s *Store) Exists(keys ...string) int {
	n := 0
	for _, k := range keys {
		if s.data.Has(k) {
			n++
		}
	}
	return n
}

// Len returns the number of keys.
func (s *Store) Len() int {
	return s.data.Count()
}

// Keys returns all keys in no particular order.
func (s *Store) Keys() []string {
	return s.data.Keys()
}

// ShardCount returns the number of shards.
func (s *Store) ShardCount() int {
	return s.data.ShardCount()
}

// ShardIndex returns the shard that owns key.
func (s *Store) ShardIndex(key string) int {
	return s.data.ShardIndex(key)
}

// Stats returns the key count of every shard.
func (s *Store) Stats() []cmap.ShardStats {
	return s.data.Stats()
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
