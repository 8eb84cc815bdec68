// Package confloader provides configuration loading mechanism.
//
// This package implements a configuration loader that supports multiple
// sources using koanf as the underlying library.
//
// Priority (highest to lowest):
//
//  1. Maps loaded last (command-line flag overrides, tests)
//  2. Environment variables (SHARDKV_SERVER_REDIS_ADDR -> server.redis.addr)
//  3. YAML configuration file
//  4. Values already present in the target struct (defaults)
//
// Watcher reports changes to a loaded file so callers can re-read the
// settings that are safe to change at runtime.
package confloader
