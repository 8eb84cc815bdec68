package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidwall/resp"

	"github.com/yndnr/shardkv/internal/frame"
	"github.com/yndnr/shardkv/pkg/oneshot"
)

// DefaultQueueSize is the capacity of the command queue.
const DefaultQueueSize = 32

// DefaultRequestTimeout bounds one round trip performed by the manager.
const DefaultRequestTimeout = 30 * time.Second

// Dialer opens a new connection for the manager. It is called lazily on the
// first command and again after a transport failure.
type Dialer func(ctx context.Context) (*Conn, error)

// Option configures a Mux.
type Option func(*Mux)

// WithQueueSize sets the command queue capacity. Values below 1 are
// ignored.
func WithQueueSize(n int) Option {
	return func(m *Mux) {
		if n > 0 {
			m.queueSize = n
		}
	}
}

// WithRequestTimeout bounds each dial and round trip the manager performs.
// Zero disables the bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(m *Mux) {
		if d >= 0 {
			m.requestTimeout = d
		}
	}
}

// WithLogger sets the manager logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mux) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithRegisterer registers the client metrics with r.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(m *Mux) {
		m.registerer = r
	}
}

// withConn hands the manager an already established connection.
func withConn(c *Conn) Option {
	return func(m *Mux) {
		m.conn = c
	}
}

type result struct {
	value resp.Value
	err   error
}

type request struct {
	ctx context.Context
	cmd frame.Command
	tx  *oneshot.Sender[result]
}

// Mux multiplexes commands from many Handles onto one connection.
type Mux struct {
	dial           Dialer
	queueSize      int
	requestTimeout time.Duration
	logger         *slog.Logger
	registerer     prometheus.Registerer
	metrics        *metrics

	queue chan request
	done  chan struct{}

	mu   sync.Mutex
	refs int

	// conn is owned by the manager goroutine.
	conn *Conn
}

// NewMux starts a manager goroutine that dials through dial and returns
// the first Handle.
func NewMux(dial Dialer, opts ...Option) *Handle {
	m := &Mux{
		dial:           dial,
		queueSize:      DefaultQueueSize,
		requestTimeout: DefaultRequestTimeout,
		logger:         slog.Default(),
		done:           make(chan struct{}),
		refs:           1,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.queue = make(chan request, m.queueSize)
	m.metrics = newMetrics(m.registerer)

	go m.run()
	return &Handle{mux: m}
}

// Open dials addr and starts a Mux on the connection. Later transport
// failures redial the same address.
func Open(ctx context.Context, addr string, opts ...Option) (*Handle, error) {
	c, err := Dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	dial := func(ctx context.Context) (*Conn, error) {
		return Dial(ctx, addr)
	}
	return NewMux(dial, append(opts, withConn(c))...), nil
}

func (m *Mux) run() {
	defer close(m.done)
	defer m.dropConn()

	for req := range m.queue {
		m.metrics.queueDepth.Set(float64(len(m.queue)))
		m.serve(req)
	}
	m.logger.Debug("client manager stopped")
}

func (m *Mux) serve(req request) {
	// Closing after Send is a no-op; otherwise the caller sees
	// ErrDisconnected instead of waiting forever.
	defer req.tx.Close()

	if req.tx.ReceiverClosed() {
		m.metrics.dropped.Inc()
		return
	}

	// A command taken off the queue runs to completion whatever happens
	// to the caller's ctx; only the caller's Recv watches it.
	ctx := context.WithoutCancel(req.ctx)
	if m.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.requestTimeout)
		defer cancel()
	}

	var res result
	conn, err := m.connect(ctx)
	if err != nil {
		res.err = err
	} else {
		res.value, res.err = conn.do(ctx, req.cmd)
		if conn.Broken() {
			m.logger.Debug("discarding connection", "command", req.cmd.Name(), "error", res.err)
			m.dropConn()
		}
	}

	m.metrics.observe(req.cmd.Name(), res.err)

	if err := req.tx.Send(res); errors.Is(err, oneshot.ErrReceiverClosed) {
		m.metrics.dropped.Inc()
	}
}

func (m *Mux) connect(ctx context.Context) (*Conn, error) {
	if m.conn != nil {
		return m.conn, nil
	}
	c, err := m.dial(ctx)
	if err != nil {
		m.logger.Warn("client dial failed", "error", err)
		return nil, err
	}
	m.conn = c
	return c, nil
}

func (m *Mux) dropConn() {
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
}

// release drops one producer reference. The last one closes the queue.
func (m *Mux) release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refs--
	if m.refs == 0 {
		close(m.queue)
	}
}

func (m *Mux) retain() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs++
}

// Handle is a producer reference to a Mux. A Handle is safe for concurrent
// use; Clone gives independent owners their own reference.
type Handle struct {
	mux *Mux

	mu     sync.RWMutex
	closed bool
}

// Clone returns a new Handle on the same Mux.
func (h *Handle) Clone() *Handle {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return &Handle{mux: h.mux, closed: true}
	}
	h.mux.retain()
	return &Handle{mux: h.mux}
}

// Close releases the Handle. The manager stops after the last Handle is
// closed and all queued commands are answered. Close is idempotent.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	h.mux.release()
	return nil
}

// Done is closed once the manager goroutine has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.mux.done
}

// Get returns the value stored under key. A missing key yields
// (nil, false, nil).
func (h *Handle) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return decodeGet(h.call(ctx, frame.Get{Key: key}))
}

// Set stores value under key.
func (h *Handle) Set(ctx context.Context, key string, value []byte) error {
	return decodeOK(h.call(ctx, frame.Set{Key: key, Value: value}))
}

// Del removes keys and returns how many existed.
func (h *Handle) Del(ctx context.Context, keys ...string) (int, error) {
	return decodeInt(h.call(ctx, frame.Del{Keys: keys}))
}

// Exists returns how many of keys are present.
func (h *Handle) Exists(ctx context.Context, keys ...string) (int, error) {
	return decodeInt(h.call(ctx, frame.Exists{Keys: keys}))
}

// Ping checks the server is answering.
func (h *Handle) Ping(ctx context.Context) error {
	return decodePong(h.call(ctx, frame.Ping{}))
}

// DBSize returns the number of keys on the server.
func (h *Handle) DBSize(ctx context.Context) (int, error) {
	return decodeInt(h.call(ctx, frame.DBSize{}))
}

// call enqueues cmd and waits for its reply. If ctx ends first the reply
// channel is dropped; the manager still completes the command and
// discards the answer.
func (h *Handle) call(ctx context.Context, cmd frame.Command) (resp.Value, error) {
	tx, rx := oneshot.New[result]()

	if err := h.enqueue(ctx, request{ctx: ctx, cmd: cmd, tx: tx}); err != nil {
		return resp.Value{}, err
	}

	res, err := rx.Recv(ctx)
	if err != nil {
		if errors.Is(err, oneshot.ErrDisconnected) {
			return resp.Value{}, ErrDisconnected
		}
		return resp.Value{}, err
	}
	return res.value, res.err
}

func (h *Handle) enqueue(ctx context.Context, req request) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return ErrClosed
	}

	select {
	case h.mux.queue <- req:
		h.mux.metrics.queueDepth.Set(float64(len(h.mux.queue)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
