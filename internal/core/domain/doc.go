// Package domain defines the core client-side models for SessionGate.
//
// Domain models are pure value objects without any IO dependencies or
// framework coupling. This package contains:
//
//   - Session: the authenticated state derived from a token, with an expiry
//   - Credentials, Registration: transient form inputs, never persisted
//   - Profile, Confirmation: success payloads returned by the auth API
//   - AuthError: the closed error taxonomy every gateway call reports
package domain
