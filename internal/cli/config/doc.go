// Package config provides the local configuration of shardkv-cli.
//
// The file lives at ~/.shardkv/cli.yaml by default and supplies defaults
// for the global flags. Flags and SHARDKV_* environment variables win over
// the file.
package config
