package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/yndnr/shardkv/internal/core/domain"
	"github.com/yndnr/shardkv/internal/infra/buildinfo"
	"github.com/yndnr/shardkv/internal/infra/confloader"
	"github.com/yndnr/shardkv/internal/infra/shutdown"
	"github.com/yndnr/shardkv/internal/server/config"
	"github.com/yndnr/shardkv/internal/server/httpserver"
	"github.com/yndnr/shardkv/internal/server/redisserver"
	"github.com/yndnr/shardkv/internal/storage/memory"
	"github.com/yndnr/shardkv/internal/telemetry/logger"
	"github.com/yndnr/shardkv/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("shardkv-server " + buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	info := buildinfo.Get()
	log.Info("starting shardkv-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile)

	store := memory.New(memory.WithShardCount(cfg.Storage.ShardCount))
	reg := metric.NewRegistry()
	reg.MustRegister(metric.NewCollector(store))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisSrv := redisserver.New(redisConfig(cfg), store,
		redisserver.WithLogger(log.Slog()),
		redisserver.WithMetrics(reg),
	)

	var ready atomic.Bool
	shutdownHandler := shutdown.NewHandler(cfg.Server.ShutdownTimeout)
	shutdownHandler.SetLogger(log.Slog())

	// Hooks run in reverse order: readiness drops first, the Redis
	// listener stops last.
	if err := redisSrv.Start(ctx); err != nil {
		return fmt.Errorf("start redis server: %w", err)
	}
	shutdownHandler.OnShutdown("redis", redisSrv.Shutdown)

	if cfg.Server.HTTP.Addr != "" {
		router := httpserver.NewRouter(&httpserver.RouterConfig{
			Store: store,
			Ready: func() error {
				if !ready.Load() {
					return domain.ErrNotReady
				}
				return nil
			},
			Connections: redisSrv.ActiveConnections,
			Metrics:     reg.Handler(),
			Logger:      log.Slog(),
		})
		httpSrv := httpserver.New(cfg.Server.HTTP.Addr, router, log.Slog())
		if err := httpSrv.Start(); err != nil {
			_ = redisSrv.Shutdown(ctx)
			return fmt.Errorf("start http server: %w", err)
		}
		shutdownHandler.OnShutdown("http", httpSrv.Shutdown)
	}

	if *configFile != "" {
		stop, err := watchConfig(*configFile, log)
		if err != nil {
			log.Warn("config watch disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config-watcher", func(context.Context) error {
				return stop()
			})
		}
	}

	shutdownHandler.OnShutdown("readiness", func(context.Context) error {
		ready.Store(false)
		return nil
	})
	ready.Store(true)

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from defaults, file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initLogger initializes the structured logger and makes it the default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}

	logger.SetDefault(log)
	return log, nil
}

func redisConfig(cfg *config.ServerConfig) *redisserver.Config {
	r := cfg.Server.Redis
	return &redisserver.Config{
		Addr:           r.Addr,
		ReadTimeout:    r.ReadTimeout,
		WriteTimeout:   r.WriteTimeout,
		IdleTimeout:    r.IdleTimeout,
		RateLimit:      r.RateLimit,
		MaxConnections: r.MaxConnections,
		MaxValueBytes:  r.MaxValueBytes,
	}
}

// watchConfig re-reads the config file on change and applies the log
// level. Other settings need a restart.
func watchConfig(path string, log logger.Logger) (stop func() error, err error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log.Slog()))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		cfg, err := loadConfig(path)
		if err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		prev := logger.GetLevel()
		logger.SetLevel(cfg.Log.Level)
		if now := logger.GetLevel(); now != prev {
			log.Info("log level changed", "from", prev, "to", now)
		}
	})
	w.StartAsync()
	return w.Stop, nil
}
