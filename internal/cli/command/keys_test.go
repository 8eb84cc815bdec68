package command

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/yndnr/shardkv/internal/server/redisserver"
	"github.com/yndnr/shardkv/pkg/client"
)

func TestKeyCommands_JSON(t *testing.T) {
	addr := startServer(t, nil)
	cli := func(args ...string) string {
		t.Helper()
		out, err := runApp(t, append([]string{"-s", addr, "-o", "json"}, args...)...)
		if err != nil {
			t.Fatalf("%v error = %v", args, err)
		}
		return out
	}

	var set SetResult
	mustDecode(t, cli("set", "greeting", "hello world"), &set)
	if set.Result != "OK" || set.Key != "greeting" {
		t.Errorf("set = %+v", set)
	}

	var got GetResult
	mustDecode(t, cli("get", "greeting"), &got)
	if !got.Found || got.Value != "hello world" {
		t.Errorf("get = %+v", got)
	}

	var missing GetResult
	mustDecode(t, cli("get", "nope"), &missing)
	if missing.Found || missing.Value != "" {
		t.Errorf("get missing = %+v", missing)
	}

	var exists CountResult
	mustDecode(t, cli("exists", "greeting", "nope", "greeting"), &exists)
	if exists.Count != 2 {
		t.Errorf("exists = %d, want 2", exists.Count)
	}

	var size CountResult
	mustDecode(t, cli("dbsize"), &size)
	if size.Count != 1 {
		t.Errorf("dbsize = %d, want 1", size.Count)
	}

	var del CountResult
	mustDecode(t, cli("del", "greeting", "nope"), &del)
	if del.Count != 1 || del.Command != "del" {
		t.Errorf("del = %+v", del)
	}
}

func TestGet_Table(t *testing.T) {
	addr := startServer(t, nil)
	if _, err := runApp(t, "-s", addr, "set", "k", "v"); err != nil {
		t.Fatal(err)
	}

	out, err := runApp(t, "-s", addr, "get", "k")
	if err != nil {
		t.Fatalf("get error = %v", err)
	}
	for _, want := range []string{"FIELD", "value", "found"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestPing_YAML(t *testing.T) {
	addr := startServer(t, nil)
	out, err := runApp(t, "-s", addr, "-o", "yaml", "ping")
	if err != nil {
		t.Fatalf("ping error = %v", err)
	}
	if !strings.Contains(out, "reply: PONG") {
		t.Errorf("output = %q", out)
	}
}

func TestKeyCommands_Usage(t *testing.T) {
	tests := [][]string{
		{"get"},
		{"get", "a", "b"},
		{"set", "k"},
		{"del"},
		{"exists"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, "_"), func(t *testing.T) {
			_, err := runApp(t, args...)
			if err == nil || !strings.Contains(err.Error(), "wrong number of arguments") {
				t.Errorf("error = %v, want usage error", err)
			}
		})
	}
}

func TestServerErrorReturned(t *testing.T) {
	cfg := redisserver.DefaultConfig()
	cfg.MaxValueBytes = 3
	addr := startServer(t, cfg)

	_, err := runApp(t, "-s", addr, "set", "k", "too long")
	var se *client.ServerError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *client.ServerError", err)
	}
	if se.Code() != "KV-CMD-4130" {
		t.Errorf("Code() = %q", se.Code())
	}
}

func TestConnectFailure(t *testing.T) {
	_, err := runApp(t, "-s", "127.0.0.1:1", "--timeout", "1s", "ping")
	if err == nil || !strings.Contains(err.Error(), "connect 127.0.0.1:1") {
		t.Errorf("error = %v, want connect error", err)
	}
}

func mustDecode(t *testing.T, s string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(s), v); err != nil {
		t.Fatalf("decode %q: %v", s, err)
	}
}
