// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for shardkv-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Storage StorageSection `koanf:"storage"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	Redis RedisConfig `koanf:"redis"`
	HTTP  HTTPConfig  `koanf:"http"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// RedisConfig configures the Redis protocol server.
type RedisConfig struct {
	Addr         string        `koanf:"addr"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`

	// RateLimit is commands per second per connection. 0 disables it.
	RateLimit int `koanf:"rate_limit"`
	// MaxConnections caps open client connections. 0 means unlimited.
	MaxConnections int `koanf:"max_connections"`
	// MaxValueBytes caps SET values. 0 means unlimited.
	MaxValueBytes int `koanf:"max_value_bytes"`
}

// HTTPConfig configures the admin HTTP server. An empty Addr disables it.
type HTTPConfig struct {
	Addr string `koanf:"addr"`
}

// StorageSection configures the in-memory store.
type StorageSection struct {
	// ShardCount is fixed for the lifetime of the store.
	ShardCount int `koanf:"shard_count"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
