// Package httpserver provides the admin HTTP server for shardkv.
//
// Endpoints:
//
//   - GET /health: liveness and build information
//   - GET /ready: readiness of the Redis listener
//   - GET /stats: key and per-shard counts as JSON
//   - GET /metrics: Prometheus text format
//
// Every request passes through RequestID, Recover and AccessLog.
package httpserver
