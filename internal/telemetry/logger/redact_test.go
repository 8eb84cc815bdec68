package logger

import (
	"log/slog"
	"testing"
)

func TestRedactSensitive_Values(t *testing.T) {
	l, buf := newJSONLogger(t, "info")

	l.Info("set", "key", "user:1", "value", "hunter2", "raw_value", []byte("secret bytes"))

	entry := decodeEntry(t, buf)
	if entry["key"] != "user:1" {
		t.Errorf("key should not be redacted, got %v", entry["key"])
	}
	if entry["value"] != redactedValue {
		t.Errorf("value = %v, want redacted", entry["value"])
	}
	if entry["raw_value"] != redactedValue {
		t.Errorf("raw_value = %v, want redacted", entry["raw_value"])
	}
}

func TestRedactSensitive_Group(t *testing.T) {
	l, buf := newJSONLogger(t, "info")

	l.Info("cmd", slog.Group("request", slog.String("name", "SET"), slog.String("value", "v")))

	entry := decodeEntry(t, buf)
	group, ok := entry["request"].(map[string]any)
	if !ok {
		t.Fatalf("request group missing: %v", entry)
	}
	if group["name"] != "SET" {
		t.Errorf("name = %v", group["name"])
	}
	if group["value"] != redactedValue {
		t.Errorf("nested value = %v, want redacted", group["value"])
	}
}

func TestRedactSensitive_EmptyKept(t *testing.T) {
	a := redactSensitive(slog.String("value", ""))
	if a.Value.String() != "" {
		t.Errorf("empty value should stay empty, got %q", a.Value.String())
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := map[string]bool{
		"value":         true,
		"Value":         true,
		"old_value":     true,
		"password":      true,
		"client_secret": true,
		"key":           false,
		"command":       false,
		"remote":        false,
	}
	for key, want := range tests {
		if got := IsSensitiveKey(key); got != want {
			t.Errorf("IsSensitiveKey(%q) = %v, want %v", key, got, want)
		}
	}
}
