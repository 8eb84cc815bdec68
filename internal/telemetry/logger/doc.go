// Package logger builds the server's slog handlers.
//
// Records are JSON by default, or text. One level is shared by every
// Logger built with New and can be changed at runtime with SetLevel.
// Attributes whose key names a stored value or a secret are redacted before
// they reach the output. Connection ids travel in the context
// (WithConnID).
package logger
