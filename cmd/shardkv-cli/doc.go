// Package main provides the entry point for shardkv-cli.
//
// The CLI talks to shardkv-server over the Redis protocol. All commands of
// one invocation share a single multiplexed connection.
//
// Usage:
//
//	shardkv-cli [global flags] [command] [args]
//	shardkv-cli -s 127.0.0.1:6379 set greeting hello
//	shardkv-cli -o json get greeting
//	shardkv-cli bench --clients 100 --requests 100000
//
// Run without a command to start interactive mode.
package main
