// Package benchmark provides performance benchmarks for shardkv.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Compare shard counts under parallel load:
//
//	go test -bench=BenchmarkStoreParallel -cpu=1,4,8 ./internal/tests/benchmark/...
//
// Compare results:
//
//	benchstat old.txt new.txt
package benchmark
