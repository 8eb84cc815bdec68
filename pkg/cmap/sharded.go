// Package cmap provides a concurrent map partitioned into shards.
package cmap

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultShardCount is the default number of shards.
const DefaultShardCount = 16

// LockHook is called with the shard index right after that shard's lock is
// acquired and before the map is touched. It must not block for long and
// must not call back into the Map.
type LockHook func(shard int)

// Map is a concurrent-safe sharded map keyed by string.
type Map[V any] struct {
	shards []*shard[V]
	hook   LockHook
}

type shard[V any] struct {
	mu    sync.Mutex
	items map[string]V
}

// Option configures a Map.
type Option func(*options)

type options struct {
	hook LockHook
}

// WithLockHook installs a hook observed on every shard lock acquisition.
func WithLockHook(h LockHook) Option {
	return func(o *options) {
		o.hook = h
	}
}

// New creates a new sharded map with the default shard count.
func New[V any](opts ...Option) *Map[V] {
	return NewWithShards[V](DefaultShardCount, opts...)
}

// NewWithShards creates a new sharded map with the specified shard count.
// A non-positive count falls back to DefaultShardCount.
func NewWithShards[V any](shardCount int, opts ...Option) *Map[V] {
	if shardCount <= 0 {
		shardCount = DefaultShardCount
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	m := &Map[V]{
		shards: make([]*shard[V], shardCount),
		hook:   o.hook,
	}
	for i := range m.shards {
		m.shards[i] = &shard[V]{
			items: make(map[string]V),
		}
	}
	return m
}

// ShardIndex returns the index of the shard that owns key.
func (m *Map[V]) ShardIndex(key string) int {
	return int(murmur3.Sum32([]byte(key)) % uint32(len(m.shards)))
}

// lock acquires the shard owning key. The caller must call unlock.
func (m *Map[V]) lock(key string) (*shard[V], int) {
	idx := m.ShardIndex(key)
	s := m.shards[idx]
	s.mu.Lock()
	if m.hook != nil {
		m.hook(idx)
	}
	return s, idx
}

// Get retrieves a value by key.
func (m *Map[V]) Get(key string) (V, bool) {
	s, _ := m.lock(key)
	defer s.mu.Unlock()
	val, ok := s.items[key]
	return val, ok
}

// Set stores a key-value pair, overwriting any previous value.
func (m *Map[V]) Set(key string, value V) {
	s, _ := m.lock(key)
	defer s.mu.Unlock()
	s.items[key] = value
}

// Delete removes a key and reports whether it existed.
func (m *Map[V]) Delete(key string) bool {
	s, _ := m.lock(key)
	defer s.mu.Unlock()
	_, ok := s.items[key]
	if ok {
		delete(s.items, key)
	}
	return ok
}

// Has checks if a key exists.
func (m *Map[V]) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Update atomically replaces the value for key with fn's result.
// fn runs under the shard lock and must not block.
func (m *Map[V]) Update(key string, fn func(value V, exists bool) V) V {
	s, _ := m.lock(key)
	defer s.mu.Unlock()

	existing, exists := s.items[key]
	newValue := fn(existing, exists)
	s.items[key] = newValue
	return newValue
}

// SetIfAbsent sets the value only if the key does not exist.
// Returns true if the value was set.
func (m *Map[V]) SetIfAbsent(key string, value V) bool {
	s, _ := m.lock(key)
	defer s.mu.Unlock()

	if _, ok := s.items[key]; ok {
		return false
	}
	s.items[key] = value
	return true
}

// Count returns the total number of items.
func (m *Map[V]) Count() int {
	count := 0
	for _, s := range m.shards {
		s.mu.Lock()
		count += len(s.items)
		s.mu.Unlock()
	}
	return count
}

// Clear removes all items.
func (m *Map[V]) Clear() {
	for _, s := range m.shards {
		s.mu.Lock()
		s.items = make(map[string]V)
		s.mu.Unlock()
	}
}

// Range iterates over all key-value pairs until fn returns false.
//
// Locks are taken shard by shard, so the view may not be consistent across
// shards. fn must not call back into the Map.
func (m *Map[V]) Range(fn func(key string, value V) bool) {
	for _, s := range m.shards {
		s.mu.Lock()
		for k, v := range s.items {
			if !fn(k, v) {
				s.mu.Unlock()
				return
			}
		}
		s.mu.Unlock()
	}
}

// Keys returns all keys.
func (m *Map[V]) Keys() []string {
	keys := make([]string, 0, m.Count())
	m.Range(func(key string, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// ShardCount returns the number of shards.
func (m *Map[V]) ShardCount() int {
	return len(m.shards)
}

// ShardStats holds the item count of one shard.
type ShardStats struct {
	Index int `json:"index" yaml:"index"`
	Count int `json:"count" yaml:"count"`
}

// Stats returns statistics about all shards.
func (m *Map[V]) Stats() []ShardStats {
	stats := make([]ShardStats, len(m.shards))
	for i, s := range m.shards {
		s.mu.Lock()
		stats[i] = ShardStats{
			Index: i,
			Count: len(s.items),
		}
		s.mu.Unlock()
	}
	return stats
}
