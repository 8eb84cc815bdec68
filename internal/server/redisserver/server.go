package redisserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/shardkv/internal/core/domain"
	"github.com/yndnr/shardkv/internal/storage/memory"
	"github.com/yndnr/shardkv/internal/telemetry/metric"
)

// Config holds the Redis server configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string
	// ReadTimeout bounds reading one command once its first byte arrived
	// (default: 30s). Helps prevent slowloris attacks.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing a response (default: 30s).
	WriteTimeout time.Duration
	// IdleTimeout is how long a connection may wait between commands
	// (default: 5m).
	IdleTimeout time.Duration
	// RateLimit is the maximum number of commands per second per connection.
	// Set to 0 to disable rate limiting.
	RateLimit int
	// MaxConnections caps concurrently open connections. 0 means unlimited.
	MaxConnections int
	// MaxValueBytes caps the size of a SET value. 0 means unlimited.
	MaxValueBytes int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:         "127.0.0.1:6379",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  5 * time.Minute,
	}
}

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second

	// rejectWriteTimeout caps the write of the too-many-clients reply.
	rejectWriteTimeout = time.Second
)

var errServerClosed = errors.New("redis server closed")

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records command and connection metrics into r.
func WithMetrics(r *metric.Registry) Option {
	return func(s *Server) {
		s.metrics = r
	}
}

// Server is the Redis protocol front end of a memory.Store.
type Server struct {
	cfg     *Config
	store   *memory.Store
	handler *CommandHandler
	logger  *slog.Logger
	metrics *metric.Registry

	ln      net.Listener
	running atomic.Bool
	wg      sync.WaitGroup

	mu    sync.Mutex
	conns map[*Conn]struct{}
}

// New creates a new Redis protocol server over store.
func New(cfg *Config, store *memory.Store, opts ...Option) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		cfg:    withDefaults(*cfg),
		store:  store,
		logger: slog.Default(),
		conns:  make(map[*Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.handler = NewCommandHandler(store, s.cfg.MaxValueBytes, s.metrics, s.logger)
	return s
}

func withDefaults(cfg Config) *Config {
	def := DefaultConfig()
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	return &cfg
}

// Start binds the listener and serves connections in the background.
// A bind failure is returned to the caller.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("redis server already started")
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.ln = ln
	s.logger.Info("redis server listening", "address", ln.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil {
			s.logger.Error("redis accept loop stopped", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// ActiveConnections returns the number of open client connections.
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Shutdown stops accepting, closes open connections and waits for their
// handlers to return or ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	var firstErr error
	if s.ln != nil {
		if err := s.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			firstErr = err
		}
	}

	s.mu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("redis server stopped")
	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	var backoff time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			if backoff == 0 {
				backoff = minAcceptBackoff
			} else {
				backoff = min(backoff*2, maxAcceptBackoff)
			}
			s.logger.Warn("accept error, retrying", "error", err, "backoff", backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		c := newConn(nc, s.cfg.RateLimit)
		if err := s.track(c); err != nil {
			if errors.Is(err, errServerClosed) {
				_ = c.Close()
				return nil
			}
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.reject(c)
			}()
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(c)
			s.serveConn(ctx, c)
		}()
	}
}

// track registers c. It fails once Shutdown has begun or when the
// connection limit is reached. Shutdown closes tracked connections under
// the same lock, so a connection is either closed by Shutdown or never
// tracked.
func (s *Server) track(c *Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return errServerClosed
	}
	if s.cfg.MaxConnections > 0 && len(s.conns) >= s.cfg.MaxConnections {
		return domain.ErrTooManyClients
	}
	s.conns[c] = struct{}{}
	s.metrics.ConnOpened()
	return nil
}

func (s *Server) untrack(c *Conn) {
	_ = c.Close()

	s.mu.Lock()
	if _, ok := s.conns[c]; ok {
		delete(s.conns, c)
		s.metrics.ConnClosed()
	}
	s.mu.Unlock()
}

func (s *Server) reject(c *Conn) {
	defer c.Close()

	s.metrics.ConnRejected()
	s.logger.Warn("connection rejected", "remote", c.RemoteAddr(), "max_connections", s.cfg.MaxConnections)

	_ = c.netConn.SetWriteDeadline(time.Now().Add(min(s.cfg.WriteTimeout, rejectWriteTimeout)))
	_ = c.writeError(domain.ErrTooManyClients)
}
