// Package config defines the server configuration structure.
package config

import (
	"errors"
	"fmt"
	"net"

	"github.com/yndnr/shardkv/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.Redis.Addr == "" {
		return errors.New("server.redis.addr is required")
	}
	if err := verifyAddr("server.redis.addr", cfg.Redis.Addr); err != nil {
		return err
	}
	if cfg.HTTP.Addr != "" {
		if err := verifyAddr("server.http.addr", cfg.HTTP.Addr); err != nil {
			return err
		}
		// Port 0 picks a free port per listener, so it never collides.
		if cfg.HTTP.Addr == cfg.Redis.Addr && !ephemeral(cfg.HTTP.Addr) {
			return fmt.Errorf("server.http.addr and server.redis.addr must differ (%s)", cfg.HTTP.Addr)
		}
	}

	r := cfg.Redis
	if r.ReadTimeout < 0 || r.WriteTimeout < 0 || r.IdleTimeout < 0 {
		return errors.New("server.redis timeouts must not be negative")
	}
	if r.RateLimit < 0 {
		return errors.New("server.redis.rate_limit must not be negative")
	}
	if r.MaxConnections < 0 {
		return errors.New("server.redis.max_connections must not be negative")
	}
	if r.MaxValueBytes < 0 {
		return errors.New("server.redis.max_value_bytes must not be negative")
	}
	if cfg.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}
	return nil
}

func verifyAddr(name, addr string) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s: invalid address %q: %w", name, addr, err)
	}
	return nil
}

func ephemeral(addr string) bool {
	_, port, err := net.SplitHostPort(addr)
	return err == nil && port == "0"
}

func verifyStorage(cfg *StorageSection) error {
	if cfg.ShardCount < 1 {
		return errors.New("storage.shard_count must be at least 1")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("log.level: unknown level %q", cfg.Level)
	}
	switch cfg.Format {
	case "json", "text", "console":
		return nil
	}
	return fmt.Errorf("log.format: unknown format %q", cfg.Format)
}
