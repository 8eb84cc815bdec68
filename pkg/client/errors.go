package client

import (
	"errors"
	"strings"

	"github.com/yndnr/shardkv/internal/core/domain"
)

var (
	// ErrClosed is returned when a closed Handle or Conn is used.
	ErrClosed = errors.New("client: closed")

	// ErrDisconnected is returned when the manager dropped a request without
	// answering it.
	ErrDisconnected = errors.New("client: request dropped without a reply")
)

// ServerError is an error reply sent by the server. The connection stays
// usable unless Closing reports true.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// Code returns the shardkv error code carried by the reply (for example
// "KV-CMD-4000"), or "" when the reply has none.
func (e *ServerError) Code() string {
	fields := strings.Fields(e.Message)
	if len(fields) >= 2 && strings.HasPrefix(fields[1], "KV-") {
		return fields[1]
	}
	return ""
}

// Closing reports whether the server closes the connection after sending
// this reply.
func (e *ServerError) Closing() bool {
	switch e.Code() {
	case domain.ErrUnknownCommand.Code,
		domain.ErrWrongArity.Code,
		domain.ErrEmptyCommand.Code,
		domain.ErrProtocol.Code,
		domain.ErrInternal.Code:
		return true
	}
	return false
}
