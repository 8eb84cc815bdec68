package frame

import (
	"bufio"
	"errors"
	"io"
	"net"

	"github.com/tidwall/resp"

	"github.com/yndnr/shardkv/internal/core/domain"
)

// DefaultBufferSize is the read and write buffer size of a Conn.
const DefaultBufferSize = 16 * 1024

// Conn reads and writes RESP frames on a byte stream.
//
// A Conn is not safe for concurrent use; each side of a connection is owned
// by exactly one goroutine.
type Conn struct {
	br *bufio.Reader
	bw *bufio.Writer
	rd *resp.Reader
}

// NewConn wraps rw with buffered frame reading and writing.
func NewConn(rw io.ReadWriter) *Conn {
	br := bufio.NewReaderSize(rw, DefaultBufferSize)
	return &Conn{
		br: br,
		bw: bufio.NewWriterSize(rw, DefaultBufferSize),
		// resp.NewReader reuses br since it is already large enough.
		rd: resp.NewReader(br),
	}
}

// Peek blocks until at least one byte of the next frame is available.
// It returns io.EOF when the peer closed the stream between frames.
func (c *Conn) Peek() error {
	_, err := c.br.Peek(1)
	return err
}

// ReadRequest reads one request frame. Both RESP arrays and inline
// (telnet style) commands are accepted.
func (c *Conn) ReadRequest() (resp.Value, error) {
	v, _, _, err := c.rd.ReadMultiBulk()
	if err != nil {
		return resp.Value{}, classify(err)
	}
	// The codec yields an untyped null for an array header over its
	// element limit without consuming the elements.
	if v.Type() != resp.Array {
		return resp.Value{}, domain.ErrProtocol.WithDetails("invalid multibulk length")
	}
	return v, nil
}

// ReadReply reads one reply frame of any type.
func (c *Conn) ReadReply() (resp.Value, error) {
	v, _, err := c.rd.ReadValue()
	if err != nil {
		return resp.Value{}, classify(err)
	}
	return v, nil
}

// WriteFrame buffers one frame. Call Flush to send it.
func (c *Conn) WriteFrame(v resp.Value) error {
	b, err := v.MarshalRESP()
	if err != nil {
		return err
	}
	_, err = c.bw.Write(b)
	return err
}

// Flush writes any buffered frames to the underlying stream.
func (c *Conn) Flush() error {
	return c.bw.Flush()
}

// IsTransport reports whether err is a stream level failure (EOF, closed
// connection, timeout, reset) rather than a malformed frame.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// classify wraps decoding failures in domain.ErrProtocol and passes
// transport errors through.
func classify(err error) error {
	if IsTransport(err) {
		return err
	}
	return domain.ErrProtocol.WithDetails(err.Error()).WithCause(err)
}
