package client

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/shardkv/internal/frame"
	"github.com/yndnr/shardkv/internal/server/redisserver"
	"github.com/yndnr/shardkv/internal/storage/memory"
)

// startServer runs a real server on a loopback port.
func startServer(t *testing.T, cfg *redisserver.Config) string {
	t.Helper()
	if cfg == nil {
		cfg = redisserver.DefaultConfig()
	}
	cfg.Addr = "127.0.0.1:0"

	srv := redisserver.New(cfg, memory.New())
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv.Addr().String()
}

// fakeServer serves connections over net.Pipe so tests control when
// replies are written.
type fakeServer struct {
	handler *redisserver.CommandHandler

	// hold, when set, gates every reply on one receive.
	hold chan struct{}
	// hangUpOnDial closes the connection of that dial number after reading
	// its first request, without replying.
	hangUpOnDial int

	mu    sync.Mutex
	dials int
	seen  []string
	recvd chan string
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		handler: redisserver.NewCommandHandler(memory.New(), 0, nil, nil),
		recvd:   make(chan string, 128),
	}
}

func (f *fakeServer) dial(ctx context.Context) (*Conn, error) {
	client, server := net.Pipe()

	f.mu.Lock()
	f.dials++
	n := f.dials
	f.mu.Unlock()

	go f.serve(server, n)
	return NewConn(client), nil
}

func (f *fakeServer) serve(nc net.Conn, dial int) {
	defer nc.Close()
	fc := frame.NewConn(nc)

	for {
		v, err := fc.ReadRequest()
		if err != nil {
			return
		}
		cmd, err := frame.ParseCommand(v)
		if err != nil {
			return
		}

		label := describe(cmd)
		f.mu.Lock()
		f.seen = append(f.seen, label)
		f.mu.Unlock()
		f.recvd <- label

		if dial == f.hangUpOnDial {
			return
		}
		if f.hold != nil {
			<-f.hold
		}

		reply, _ := f.handler.Handle(context.Background(), cmd)
		if err := fc.WriteFrame(reply); err != nil {
			return
		}
		if err := fc.Flush(); err != nil {
			return
		}
	}
}

func (f *fakeServer) dialCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dials
}

func (f *fakeServer) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seen...)
}

func describe(cmd frame.Command) string {
	switch c := cmd.(type) {
	case frame.Get:
		return "GET " + c.Key
	case frame.Set:
		return "SET " + c.Key
	}
	return cmd.Name()
}

// waitQueued waits until the manager queue holds n commands.
func waitQueued(t *testing.T, h *Handle, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for len(h.mux.queue) != n {
		if time.Now().After(deadline) {
			t.Fatalf("queue length = %d, want %d", len(h.mux.queue), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func waitReceived(t *testing.T, f *fakeServer, want string) {
	t.Helper()
	select {
	case got := <-f.recvd:
		if got != want {
			t.Fatalf("server received %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("server did not receive %q", want)
	}
}
