package benchmark

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/yndnr/shardkv/internal/storage/memory"
)

// BenchmarkStoreSet benchmarks writes into stores of various sizes.
func BenchmarkStoreSet(b *testing.B) {
	for _, preload := range KeyCounts {
		b.Run(fmt.Sprintf("preload_%d", preload), func(b *testing.B) {
			store := memory.New()
			prefillStore(store, preload, 64)
			value := make([]byte, 64)

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				store.Set(benchKey(i%preload), value)
			}

			b.StopTimer()
			reportMemory(b, "mem")
		})
	}
}

// BenchmarkStoreGet benchmarks reads by value size.
func BenchmarkStoreGet(b *testing.B) {
	const count = 10000
	for _, size := range ValueSizes {
		b.Run(fmt.Sprintf("value_%dB", size), func(b *testing.B) {
			store := memory.New()
			prefillStore(store, count, size)

			b.ResetTimer()
			b.ReportAllocs()
			b.SetBytes(int64(size))

			for i := 0; i < b.N; i++ {
				if _, ok := store.Get(benchKey(i % count)); !ok {
					b.Fatal("key missing")
				}
			}
		})
	}
}

// BenchmarkStoreParallel runs a 90/10 read/write mix from all procs for
// several shard counts.
func BenchmarkStoreParallel(b *testing.B) {
	const count = 10000
	for _, shards := range ShardCounts {
		b.Run(fmt.Sprintf("shards_%d", shards), func(b *testing.B) {
			store := memory.New(memory.WithShardCount(shards))
			prefillStore(store, count, 64)
			value := make([]byte, 64)
			var seq atomic.Int64

			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					n := int(seq.Add(1))
					key := benchKey(n % count)
					if n%10 == 0 {
						store.Set(key, value)
					} else {
						store.Get(key)
					}
				}
			})
		})
	}
}

// BenchmarkStoreDelete benchmarks delete-then-reinsert cycles.
func BenchmarkStoreDelete(b *testing.B) {
	store := memory.New()
	prefillStore(store, 10000, 64)
	value := make([]byte, 64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := benchKey(i % 10000)
		store.Delete(key)
		store.Set(key, value)
	}
}
