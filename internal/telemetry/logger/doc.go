// Package logger provides structured logging for SessionGate.
//
// It wraps log/slog behind a small Logger interface:
//
//   - logger.go: construction, level control and the process default
//   - context.go: context propagation of the logger and request IDs
//   - redact.go: masking of credentials and bearer tokens
//
// Passwords, tokens and Authorization header values are never written
// verbatim, regardless of the key they are logged under.
package logger
