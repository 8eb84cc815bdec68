package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
// Codes follow the format KV-<AREA>-<NNNN>.
type DomainError struct {
	Code    string // Error code (e.g., "KV-CMD-4000")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// RedisError renders err as the text of a RESP error reply.
//
// DomainErrors become "ERR <code> <message>[: <details>]", anything else
// becomes "ERR <error text>".
func RedisError(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		msg := "ERR " + de.Code + " " + de.Message
		if de.Details != "" {
			msg += ": " + de.Details
		}
		return msg
	}
	return "ERR " + err.Error()
}

// ============================================================================
// Command Errors (CMD)
// ============================================================================

var (
	// ErrUnknownCommand indicates the command name is not supported.
	ErrUnknownCommand = NewDomainError("KV-CMD-4000", "unknown command")

	// ErrWrongArity indicates the command has the wrong number of arguments.
	ErrWrongArity = NewDomainError("KV-CMD-4001", "wrong number of arguments")

	// ErrEmptyCommand indicates a request frame without a command name.
	ErrEmptyCommand = NewDomainError("KV-CMD-4002", "no command")

	// ErrValueTooLarge indicates a SET value exceeds the configured limit.
	ErrValueTooLarge = NewDomainError("KV-CMD-4130", "value too large")
)

// ============================================================================
// Protocol Errors (PROTO)
// ============================================================================

var (
	// ErrProtocol indicates a frame that could not be decoded or is not a
	// command array.
	ErrProtocol = NewDomainError("KV-PROTO-4000", "protocol error")

	// ErrUnexpectedReply indicates a reply whose type does not match the
	// command that was sent.
	ErrUnexpectedReply = NewDomainError("KV-PROTO-5020", "unexpected reply")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternal indicates an internal server error.
	ErrInternal = NewDomainError("KV-SYS-5000", "internal error")

	// ErrRateLimited indicates the connection exceeded its command rate.
	ErrRateLimited = NewDomainError("KV-SYS-4290", "rate limit exceeded")

	// ErrTooManyClients indicates the server connection limit is reached.
	ErrTooManyClients = NewDomainError("KV-SYS-5030", "max number of clients reached")

	// ErrNotReady indicates the server is not accepting traffic yet.
	ErrNotReady = NewDomainError("KV-SYS-5031", "service not ready")
)
