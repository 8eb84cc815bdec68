// Package command provides the shardkv-cli command tree.
//
// It uses urfave/cli/v2 for command parsing and supports both
// single-command mode and interactive mode:
//
//   - root.go: root app, global flags, interactive mode
//   - session.go: shared connection and output settings
//   - keys.go: get, set, del, exists, ping, dbsize
//   - bench.go: concurrent load generator
//   - config.go: local CLI configuration
//
// Every command sends its requests through one client.Handle, so all the
// commands of an interactive session share a single multiplexed
// connection.
package command
