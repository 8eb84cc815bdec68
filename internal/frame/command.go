package frame

import (
	"bytes"
	"strings"

	"github.com/tidwall/resp"

	"github.com/yndnr/shardkv/internal/core/domain"
)

// Command is one request understood by the store.
//
// The concrete types are Get, Set, Del, Exists, Ping, DBSize and Quit.
type Command interface {
	// Name is the upper-case command name.
	Name() string
	// Frame encodes the command as a RESP array of bulk strings.
	Frame() resp.Value
}

// Get reads one key.
type Get struct {
	Key string
}

// Set stores Value under Key, overwriting any previous value.
type Set struct {
	Key   string
	Value []byte
}

// Del removes keys and replies with the number removed.
type Del struct {
	Keys []string
}

// Exists replies with how many of Keys are present.
type Exists struct {
	Keys []string
}

// Ping replies PONG, or echoes Message when it is non-nil.
type Ping struct {
	Message []byte
}

// DBSize replies with the number of keys in the store.
type DBSize struct{}

// Quit asks the server to reply OK and close the connection.
type Quit struct{}

func (Get) Name() string    { return "GET" }
func (Set) Name() string    { return "SET" }
func (Del) Name() string    { return "DEL" }
func (Exists) Name() string { return "EXISTS" }
func (Ping) Name() string   { return "PING" }
func (DBSize) Name() string { return "DBSIZE" }
func (Quit) Name() string   { return "QUIT" }

func (c Get) Frame() resp.Value {
	return array("GET", resp.StringValue(c.Key))
}

func (c Set) Frame() resp.Value {
	return array("SET", resp.StringValue(c.Key), Bulk(c.Value))
}

func (c Del) Frame() resp.Value {
	return array("DEL", stringValues(c.Keys)...)
}

func (c Exists) Frame() resp.Value {
	return array("EXISTS", stringValues(c.Keys)...)
}

func (c Ping) Frame() resp.Value {
	if c.Message == nil {
		return array("PING")
	}
	return array("PING", Bulk(c.Message))
}

func (DBSize) Frame() resp.Value { return array("DBSIZE") }
func (Quit) Frame() resp.Value   { return array("QUIT") }

// ParseCommand converts a request frame into a Command.
//
// Errors are domain errors: ErrProtocol for frames that are not arrays,
// ErrEmptyCommand, ErrUnknownCommand and ErrWrongArity. None of them
// leave the connection in an undefined state, so the caller may reply and
// keep reading.
func ParseCommand(v resp.Value) (Command, error) {
	if v.Type() != resp.Array {
		return nil, domain.ErrProtocol.WithDetails("expected array")
	}
	args := v.Array()
	if len(args) == 0 {
		return nil, domain.ErrEmptyCommand
	}

	name := normalizeCommandName(args[0].Bytes())
	args = args[1:]

	switch name {
	case "GET":
		if len(args) != 1 {
			return nil, wrongArity(name)
		}
		return Get{Key: args[0].String()}, nil
	case "SET":
		if len(args) != 2 {
			return nil, wrongArity(name)
		}
		return Set{Key: args[0].String(), Value: cloneBytes(args[1].Bytes())}, nil
	case "DEL":
		if len(args) == 0 {
			return nil, wrongArity(name)
		}
		return Del{Keys: stringArgs(args)}, nil
	case "EXISTS":
		if len(args) == 0 {
			return nil, wrongArity(name)
		}
		return Exists{Keys: stringArgs(args)}, nil
	case "PING":
		switch len(args) {
		case 0:
			return Ping{}, nil
		case 1:
			return Ping{Message: cloneBytes(args[0].Bytes())}, nil
		}
		return nil, wrongArity(name)
	case "DBSIZE":
		if len(args) != 0 {
			return nil, wrongArity(name)
		}
		return DBSize{}, nil
	case "QUIT":
		return Quit{}, nil
	}

	return nil, domain.ErrUnknownCommand.WithDetails("'" + name + "'")
}

func wrongArity(name string) error {
	return domain.ErrWrongArity.WithDetails("for '" + strings.ToLower(name) + "' command")
}

func array(name string, args ...resp.Value) resp.Value {
	vals := make([]resp.Value, 0, len(args)+1)
	vals = append(vals, resp.StringValue(name))
	vals = append(vals, args...)
	return resp.ArrayValue(vals)
}

func stringValues(keys []string) []resp.Value {
	vals := make([]resp.Value, len(keys))
	for i, k := range keys {
		vals[i] = resp.StringValue(k)
	}
	return vals
}

func stringArgs(args []resp.Value) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.String()
	}
	return out
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func normalizeCommandName(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	// Uppercase ASCII without allocating for already uppercased tokens.
	if bytes.ContainsAny(b, "abcdefghijklmnopqrstuvwxyz") {
		return strings.ToUpper(string(b))
	}
	return string(b)
}
