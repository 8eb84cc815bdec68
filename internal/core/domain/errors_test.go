package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("KV-TEST-1000", "test message"),
			expected: "[KV-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("KV-TEST-1001", "test message").WithDetails("extra info"),
			expected: "[KV-TEST-1001] test message: extra info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("KV-TEST-1000", "message 1")
	err2 := NewDomainError("KV-TEST-1000", "message 2")
	err3 := NewDomainError("KV-TEST-1001", "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}

	wrapped := fmt.Errorf("dispatch: %w", ErrWrongArity.WithDetails("'get' command"))
	if !errors.Is(wrapped, ErrWrongArity) {
		t.Error("errors.Is should see through fmt.Errorf wrapping")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	err := ErrProtocol.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if ErrProtocol.Cause != nil {
		t.Error("WithCause must not mutate the sentinel")
	}
}

func TestIsDomainErrorAndCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", ErrRateLimited)

	if !IsDomainError(err, "") {
		t.Error("IsDomainError(err, \"\") = false, want true")
	}
	if !IsDomainError(err, "KV-SYS-4290") {
		t.Error("IsDomainError with matching code = false, want true")
	}
	if IsDomainError(err, "KV-SYS-5000") {
		t.Error("IsDomainError with other code = true, want false")
	}
	if got := GetErrorCode(err); got != "KV-SYS-4290" {
		t.Errorf("GetErrorCode = %q", got)
	}
	if got := GetErrorCode(errors.New("plain")); got != "" {
		t.Errorf("GetErrorCode(plain) = %q, want empty", got)
	}
}

func TestRedisError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"domain", ErrUnknownCommand, "ERR KV-CMD-4000 unknown command"},
		{"domain with details", ErrUnknownCommand.WithDetails("'FOO'"), "ERR KV-CMD-4000 unknown command: 'FOO'"},
		{"wrapped domain", fmt.Errorf("x: %w", ErrInternal), "ERR KV-SYS-5000 internal error"},
		{"plain", errors.New("boom"), "ERR boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedisError(tt.err); got != tt.want {
				t.Errorf("RedisError() = %q, want %q", got, tt.want)
			}
		})
	}
}
