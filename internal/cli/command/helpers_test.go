package command

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

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

// runWith runs the CLI with the given config file and stdin, returning
// what it wrote to stdout.
func runWith(t *testing.T, configPath, stdin string, args ...string) (string, error) {
	t.Helper()

	app := App()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.Reader = strings.NewReader(stdin)

	full := []string{"shardkv-cli", "--config", configPath, "--history", ""}
	err := app.Run(append(full, args...))
	return out.String(), err
}

// runApp runs the CLI with no config file.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runWith(t, filepath.Join(t.TempDir(), "cli.yaml"), "", args...)
}
