// Package handler provides the admin HTTP handlers for shardkv.
//
//   - health.go: liveness and readiness checks
//   - stats.go: store and shard statistics
//
// Every JSON body uses the Response envelope from types.go.
package handler
