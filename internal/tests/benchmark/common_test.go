package benchmark

import (
	"context"
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/yndnr/shardkv/internal/server/redisserver"
	"github.com/yndnr/shardkv/internal/storage/memory"
)

// KeyCounts defines store sizes for benchmarking.
var KeyCounts = []int{1000, 10000, 100000}

// ShardCounts compares lock striping levels.
var ShardCounts = []int{1, 4, 16, 64}

// ValueSizes in bytes.
var ValueSizes = []int{16, 256, 4096}

func benchKey(i int) string {
	return fmt.Sprintf("key:%08d", i)
}

// prefillStore writes count keys with values of size bytes.
func prefillStore(store *memory.Store, count, size int) {
	value := make([]byte, size)
	for i := 0; i < count; i++ {
		store.Set(benchKey(i), value)
	}
}

// startServer runs a server on a loopback port for the benchmark.
func startServer(b *testing.B, store *memory.Store) string {
	b.Helper()
	cfg := redisserver.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"

	srv := redisserver.New(cfg, store)
	if err := srv.Start(context.Background()); err != nil {
		b.Fatalf("Start() error = %v", err)
	}
	b.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv.Addr().String()
}

// reportMemory reports heap usage after a GC.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.HeapAlloc)/1024/1024, prefix+"_heap_MB")
}
