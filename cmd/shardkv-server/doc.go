// Package main provides the entry point for shardkv-server.
//
// The server holds a sharded in-memory key-value store and serves:
//
//   - the Redis protocol (GET, SET, DEL, EXISTS, PING, DBSIZE, QUIT)
//   - an optional admin HTTP endpoint (/health, /ready, /stats, /metrics)
//
// Usage:
//
//	shardkv-server [flags]
//	shardkv-server --config /path/to/config.yaml
//
// Settings come from defaults, then the config file, then SHARDKV_*
// environment variables. Editing the config file while the server runs
// re-applies log.level.
package main
