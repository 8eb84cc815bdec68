package frame

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/tidwall/resp"

	"github.com/yndnr/shardkv/internal/core/domain"
)

// pipeBuffer is an in-memory stream: writes append, reads consume.
type pipeBuffer struct {
	bytes.Buffer
}

func newTestConn(input string) (*Conn, *pipeBuffer) {
	buf := &pipeBuffer{}
	buf.WriteString(input)
	return NewConn(buf), buf
}

func TestCommandRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{"get", Get{Key: "hello"}},
		{"set", Set{Key: "hello", Value: []byte("world")}},
		{"set binary value", Set{Key: "bin", Value: []byte{0, '\r', '\n', 0xff}}},
		{"set empty value", Set{Key: "empty", Value: []byte{}}},
		{"del", Del{Keys: []string{"a", "b"}}},
		{"exists", Exists{Keys: []string{"a"}}},
		{"ping", Ping{}},
		{"ping message", Ping{Message: []byte("hi")}},
		{"dbsize", DBSize{}},
		{"quit", Quit{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestConn("")
			if err := c.WriteFrame(tt.cmd.Frame()); err != nil {
				t.Fatalf("WriteFrame: %v", err)
			}
			if err := c.Flush(); err != nil {
				t.Fatalf("Flush: %v", err)
			}

			v, err := c.ReadRequest()
			if err != nil {
				t.Fatalf("ReadRequest: %v", err)
			}
			got, err := ParseCommand(v)
			if err != nil {
				t.Fatalf("ParseCommand: %v", err)
			}
			if !reflect.DeepEqual(got, tt.cmd) {
				t.Errorf("got %#v, want %#v", got, tt.cmd)
			}
			if got.Name() != tt.cmd.Name() {
				t.Errorf("Name() = %q, want %q", got.Name(), tt.cmd.Name())
			}
		})
	}
}

func TestReadRequest_Inline(t *testing.T) {
	c, _ := newTestConn("set greeting hello\r\n")

	v, err := c.ReadRequest()
	if err != nil {
		t.Fatalf("ReadRequest: %v", err)
	}
	cmd, err := ParseCommand(v)
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	want := Set{Key: "greeting", Value: []byte("hello")}
	if !reflect.DeepEqual(cmd, want) {
		t.Errorf("got %#v, want %#v", cmd, want)
	}
}

func TestReadRequest_EOF(t *testing.T) {
	c, _ := newTestConn("")

	if err := c.Peek(); !errors.Is(err, io.EOF) {
		t.Errorf("Peek on empty stream = %v, want io.EOF", err)
	}
	if _, err := c.ReadRequest(); !errors.Is(err, io.EOF) {
		t.Errorf("ReadRequest on empty stream = %v, want io.EOF", err)
	}
}

func TestReadReply_Malformed(t *testing.T) {
	c, _ := newTestConn("!garbage\r\n")

	_, err := c.ReadReply()
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrProtocol) {
		t.Errorf("error = %v, want ErrProtocol", err)
	}
	if IsTransport(err) {
		t.Error("protocol error classified as transport")
	}
}

func TestReadRequest_OversizedArrayHeader(t *testing.T) {
	c, _ := newTestConn("*2000000\r\n")

	_, err := c.ReadRequest()
	if !errors.Is(err, domain.ErrProtocol) {
		t.Fatalf("ReadRequest = %v, want ErrProtocol", err)
	}
	if IsTransport(err) {
		t.Error("oversized header classified as transport")
	}
}

func TestReadRequest_NullArray(t *testing.T) {
	c, _ := newTestConn("*-1\r\n")

	v, err := c.ReadRequest()
	if err != nil {
		t.Fatalf("ReadRequest: %v", err)
	}
	if _, err := ParseCommand(v); !errors.Is(err, domain.ErrEmptyCommand) {
		t.Errorf("ParseCommand(null array) = %v, want ErrEmptyCommand", err)
	}
}

func TestParseCommand_Errors(t *testing.T) {
	tests := []struct {
		name  string
		value resp.Value
		want  *domain.DomainError
	}{
		{"not an array", resp.StringValue("GET"), domain.ErrProtocol},
		{"empty array", resp.ArrayValue(nil), domain.ErrEmptyCommand},
		{"unknown", array("FLUSHALL"), domain.ErrUnknownCommand},
		{"get no key", array("GET"), domain.ErrWrongArity},
		{"get two keys", array("GET", resp.StringValue("a"), resp.StringValue("b")), domain.ErrWrongArity},
		{"set no value", array("SET", resp.StringValue("a")), domain.ErrWrongArity},
		{"del no keys", array("DEL"), domain.ErrWrongArity},
		{"exists no keys", array("EXISTS"), domain.ErrWrongArity},
		{"ping too many", array("PING", resp.StringValue("a"), resp.StringValue("b")), domain.ErrWrongArity},
		{"dbsize args", array("DBSIZE", resp.StringValue("x")), domain.ErrWrongArity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCommand(tt.value)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseCommand error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseCommand_CaseInsensitive(t *testing.T) {
	cmd, err := ParseCommand(resp.ArrayValue([]resp.Value{
		resp.StringValue("gEt"),
		resp.StringValue("k"),
	}))
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if _, ok := cmd.(Get); !ok {
		t.Errorf("got %T, want Get", cmd)
	}
}

func TestReplies(t *testing.T) {
	tests := []struct {
		name  string
		value resp.Value
		wire  string
	}{
		{"ok", OK(), "+OK\r\n"},
		{"null", Null(), "$-1\r\n"},
		{"bulk", Bulk([]byte("world")), "$5\r\nworld\r\n"},
		{"nil bulk is empty, not null", Bulk(nil), "$0\r\n\r\n"},
		{"integer", Integer(3), ":3\r\n"},
		{"error", Error(domain.ErrUnknownCommand), "-ERR KV-CMD-4000 unknown command\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, buf := newTestConn("")
			if err := c.WriteFrame(tt.value); err != nil {
				t.Fatalf("WriteFrame: %v", err)
			}
			if err := c.Flush(); err != nil {
				t.Fatalf("Flush: %v", err)
			}
			if got := buf.String(); got != tt.wire {
				t.Errorf("wire = %q, want %q", got, tt.wire)
			}
		})
	}
}

func TestReadReply_NullIsDistinctFromValue(t *testing.T) {
	c, _ := newTestConn("$-1\r\n$9\r\nNot found\r\n")

	v, err := c.ReadReply()
	if err != nil {
		t.Fatalf("ReadReply: %v", err)
	}
	if !v.IsNull() {
		t.Error("first reply should be null")
	}

	v, err = c.ReadReply()
	if err != nil {
		t.Fatalf("ReadReply: %v", err)
	}
	if v.IsNull() || v.String() != "Not found" {
		t.Errorf("second reply = %q (null=%v), want literal value", v.String(), v.IsNull())
	}
}

func TestIsTransport(t *testing.T) {
	if IsTransport(nil) {
		t.Error("nil is not a transport error")
	}
	if !IsTransport(io.EOF) || !IsTransport(io.ErrUnexpectedEOF) {
		t.Error("EOF variants must be transport errors")
	}
	if IsTransport(domain.ErrProtocol) {
		t.Error("ErrProtocol is not a transport error")
	}
	if IsTransport(errors.New("plain")) {
		t.Error("plain errors are not transport errors")
	}
}
