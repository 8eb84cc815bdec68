package command

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/shardkv/internal/cli/output"
	"github.com/yndnr/shardkv/pkg/client"
)

const sessionKey = "session"

// Session holds the settings and the connection shared by the commands of
// one CLI invocation or interactive session.
type Session struct {
	Server      string
	Output      output.Format
	Timeout     time.Duration
	QueueSize   int
	HistoryFile string

	mu     sync.Mutex
	handle *client.Handle
}

// Handle returns the multiplexed connection, opening it on first use.
func (s *Session) Handle(ctx context.Context) (*client.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle != nil {
		return s.handle, nil
	}

	h, err := client.Open(ctx, s.Server, client.WithQueueSize(s.QueueSize))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", s.Server, err)
	}
	s.handle = h
	return h, nil
}

// Close releases the connection if one was opened.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle == nil {
		return nil
	}
	err := s.handle.Close()
	s.handle = nil
	return err
}

// withTimeout bounds one command by the session timeout.
func (s *Session) withTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, s.Timeout)
}

// Print writes data in the session output format.
func (s *Session) Print(w io.Writer, data any) error {
	return output.NewFormatter(s.Output).Format(w, data)
}

// GetSession retrieves the session from context.
func GetSession(c *cli.Context) *Session {
	if s, ok := c.App.Metadata[sessionKey].(*Session); ok {
		return s
	}
	return nil
}

// run opens the session connection and runs fn under the session timeout.
func run(c *cli.Context, fn func(ctx context.Context, s *Session, h *client.Handle) error) error {
	s := GetSession(c)
	if s == nil {
		return fmt.Errorf("session not initialized")
	}

	ctx, cancel := s.withTimeout(c.Context)
	defer cancel()

	h, err := s.Handle(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, s, h)
}
