package redisserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/tidwall/resp"
	"golang.org/x/time/rate"

	"github.com/yndnr/shardkv/internal/core/domain"
	"github.com/yndnr/shardkv/internal/frame"
	"github.com/yndnr/shardkv/internal/telemetry/logger"
	"github.com/yndnr/shardkv/internal/telemetry/metric"
)

// Conn represents a single Redis client connection.
type Conn struct {
	id      string
	netConn net.Conn
	fc      *frame.Conn
	limiter *rate.Limiter

	closed atomic.Bool
}

func newConn(c net.Conn, rateLimit int) *Conn {
	conn := &Conn{
		id:      ulid.Make().String(),
		netConn: c,
		fc:      frame.NewConn(c),
	}
	if rateLimit > 0 {
		conn.limiter = rate.NewLimiter(rate.Limit(rateLimit), rateLimit)
	}
	return conn
}

// ID returns the connection id.
func (c *Conn) ID() string {
	return c.id
}

func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

func (c *Conn) writeError(err error) error {
	if werr := c.fc.WriteFrame(frame.Error(err)); werr != nil {
		return werr
	}
	return c.fc.Flush()
}

// serveConn runs the read, dispatch, write cycle until the peer goes away,
// a transport error occurs or the request stream becomes undecodable.
func (s *Server) serveConn(ctx context.Context, c *Conn) {
	ctx = logger.WithConnID(ctx, c.id)
	log := s.logger.With("conn_id", c.id, "remote", c.RemoteAddr().String())
	log.Debug("connection opened")
	defer log.Debug("connection closed")

	for {
		// Reading: allow the idle timeout until the first byte arrives, then
		// tighten to the per-command read timeout.
		if err := c.netConn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout)); err != nil {
			return
		}
		if err := c.fc.Peek(); err != nil {
			logReadError(log, err)
			return
		}
		if err := c.netConn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
			return
		}

		req, err := c.fc.ReadRequest()
		if err != nil {
			if frame.IsTransport(err) {
				logReadError(log, err)
				return
			}
			log.Warn("undecodable request, closing connection", "error", err)
			s.metrics.ObserveCommand(commandLabelInvalid, metric.ResultError, 0)
			_ = c.netConn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			_ = c.writeError(err)
			return
		}

		// Dispatching
		reply, closeAfter := s.dispatch(ctx, c, req, log)

		// Writing
		if err := c.netConn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
			return
		}
		if err := c.fc.WriteFrame(reply); err != nil {
			log.Debug("write failed", "error", err)
			return
		}
		if err := c.fc.Flush(); err != nil {
			log.Debug("flush failed", "error", err)
			return
		}
		if closeAfter {
			return
		}
	}
}

// dispatch turns one request frame into exactly one reply. closeAfter is
// set for requests that are not a valid command and for a panic in the
// handler.
func (s *Server) dispatch(ctx context.Context, c *Conn, req resp.Value, log *slog.Logger) (reply resp.Value, closeAfter bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while handling command", "panic", r, "stack", string(debug.Stack()))
			reply = frame.Error(domain.ErrInternal)
			closeAfter = true
		}
	}()

	if c.limiter != nil && !c.limiter.Allow() {
		s.metrics.ObserveCommand(commandLabelLimited, metric.ResultError, 0)
		return frame.Error(domain.ErrRateLimited), false
	}

	// An unknown or malformed command is answered and then ends the
	// connection; other connections are unaffected.
	cmd, err := frame.ParseCommand(req)
	if err != nil {
		log.Debug("rejected command, closing connection", "error", err)
		s.metrics.ObserveCommand(commandLabelInvalid, metric.ResultError, 0)
		return frame.Error(err), true
	}

	return s.handler.Handle(ctx, cmd)
}

func logReadError(log *slog.Logger, err error) {
	if errors.Is(err, io.EOF) {
		return
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		log.Debug("connection timed out")
		return
	}
	if errors.Is(err, net.ErrClosed) {
		return
	}
	log.Debug("connection read error", "error", err)
}
