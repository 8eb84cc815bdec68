// Package metric provides Prometheus metrics for shardkv.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: registry, command and connection metrics, HTTP handler
//   - collector.go: custom collector reporting store size per shard
//
// Metrics are exposed at /metrics in Prometheus format by the admin HTTP
// server.
package metric
