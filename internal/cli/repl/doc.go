// Package repl provides the interactive mode of shardkv-cli.
//
// Each input line is split into words, honouring single and double quotes,
// and handed to an Executor. The CLI wires the Executor to its own command
// tree so interactive commands share one multiplexed connection.
//
//   - repl.go: read loop and built-in commands (help, history, exit)
//   - split.go: line tokenizer
//   - completer.go: command name suggestions
//   - history.go: history persistence
package repl
