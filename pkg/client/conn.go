package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/tidwall/resp"

	"github.com/yndnr/shardkv/internal/core/domain"
	"github.com/yndnr/shardkv/internal/frame"
)

// DefaultDialTimeout bounds Dial when ctx has no earlier deadline.
const DefaultDialTimeout = 5 * time.Second

// Conn is one connection to a shardkv server.
type Conn struct {
	nc     net.Conn
	fc     *frame.Conn
	broken bool
	closed bool
}

// Dial connects to the server at addr.
func Dial(ctx context.Context, addr string) (*Conn, error) {
	d := net.Dialer{Timeout: DefaultDialTimeout}
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewConn(nc), nil
}

// NewConn wraps an established connection.
func NewConn(nc net.Conn) *Conn {
	return &Conn{nc: nc, fc: frame.NewConn(nc)}
}

// Broken reports whether a transport failure left the connection unusable.
func (c *Conn) Broken() bool {
	return c.broken || c.closed
}

// Close closes the connection.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.nc.Close()
}

// Get returns the value stored under key. A missing key yields
// (nil, false, nil).
func (c *Conn) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return decodeGet(c.do(ctx, frame.Get{Key: key}))
}

// Set stores value under key.
func (c *Conn) Set(ctx context.Context, key string, value []byte) error {
	return decodeOK(c.do(ctx, frame.Set{Key: key, Value: value}))
}

// Del removes keys and returns how many existed.
func (c *Conn) Del(ctx context.Context, keys ...string) (int, error) {
	return decodeInt(c.do(ctx, frame.Del{Keys: keys}))
}

// Exists returns how many of keys are present.
func (c *Conn) Exists(ctx context.Context, keys ...string) (int, error) {
	return decodeInt(c.do(ctx, frame.Exists{Keys: keys}))
}

// Ping checks the server is answering.
func (c *Conn) Ping(ctx context.Context) error {
	return decodePong(c.do(ctx, frame.Ping{}))
}

// DBSize returns the number of keys on the server.
func (c *Conn) DBSize(ctx context.Context) (int, error) {
	return decodeInt(c.do(ctx, frame.DBSize{}))
}

// do writes cmd and reads its reply. Error replies are returned as
// *ServerError. Any transport failure, including ctx ending mid request,
// marks the connection broken because the stream position is unknown, and
// so does a reply after which the server hangs up.
func (c *Conn) do(ctx context.Context, cmd frame.Command) (resp.Value, error) {
	if c.Broken() {
		return resp.Value{}, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return resp.Value{}, err
	}

	// The deadline is only moved once ctx is done, so a failed read after
	// that point is reported as ctx.Err().
	stop := context.AfterFunc(ctx, func() {
		_ = c.nc.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	v, err := c.roundTrip(cmd)
	if err != nil {
		c.broken = true
		if ctxErr := ctx.Err(); ctxErr != nil {
			return resp.Value{}, ctxErr
		}
		return resp.Value{}, err
	}
	if v.Type() == resp.Error {
		se := &ServerError{Message: v.String()}
		if se.Closing() {
			c.broken = true
		}
		return resp.Value{}, se
	}
	return v, nil
}

func (c *Conn) roundTrip(cmd frame.Command) (resp.Value, error) {
	if err := c.fc.WriteFrame(cmd.Frame()); err != nil {
		return resp.Value{}, fmt.Errorf("write %s: %w", cmd.Name(), err)
	}
	if err := c.fc.Flush(); err != nil {
		return resp.Value{}, fmt.Errorf("write %s: %w", cmd.Name(), err)
	}
	v, err := c.fc.ReadReply()
	if err != nil {
		return resp.Value{}, fmt.Errorf("read %s reply: %w", cmd.Name(), err)
	}
	return v, nil
}

func unexpected(v resp.Value) error {
	return domain.ErrUnexpectedReply.WithDetails(fmt.Sprintf("type %q", string(rune(v.Type()))))
}

func decodeGet(v resp.Value, err error) ([]byte, bool, error) {
	if err != nil {
		return nil, false, err
	}
	if v.IsNull() {
		return nil, false, nil
	}
	if v.Type() != resp.BulkString {
		return nil, false, unexpected(v)
	}
	b := v.Bytes()
	if b == nil {
		b = []byte{}
	}
	return b, true, nil
}

func decodeOK(v resp.Value, err error) error {
	if err != nil {
		return err
	}
	if v.Type() != resp.SimpleString || v.String() != "OK" {
		return unexpected(v)
	}
	return nil
}

func decodePong(v resp.Value, err error) error {
	if err != nil {
		return err
	}
	if v.Type() != resp.SimpleString || v.String() != "PONG" {
		return unexpected(v)
	}
	return nil
}

func decodeInt(v resp.Value, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	if v.Type() != resp.Integer {
		return 0, unexpected(v)
	}
	return v.Integer(), nil
}

// isTransport reports whether err came from the connection rather than
// from the server's reply.
func isTransport(err error) bool {
	var se *ServerError
	if err == nil || errors.As(err, &se) || errors.Is(err, domain.ErrUnexpectedReply) {
		return false
	}
	return true
}
