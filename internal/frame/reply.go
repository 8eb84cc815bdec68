package frame

import (
	"errors"

	"github.com/tidwall/resp"

	"github.com/yndnr/shardkv/internal/core/domain"
)

// OK is the reply to a successful SET.
func OK() resp.Value {
	return resp.SimpleStringValue("OK")
}

// Null is the absent-key sentinel: the RESP null bulk string.
func Null() resp.Value {
	return resp.NullValue()
}

// Bulk returns a bulk string reply. A nil slice is sent as an empty bulk,
// never as Null.
func Bulk(b []byte) resp.Value {
	if b == nil {
		b = []byte{}
	}
	return resp.BytesValue(b)
}

// Integer returns an integer reply.
func Integer(n int) resp.Value {
	return resp.IntegerValue(n)
}

// Error returns an error reply rendered with domain.RedisError.
func Error(err error) resp.Value {
	return resp.ErrorValue(errors.New(domain.RedisError(err)))
}
