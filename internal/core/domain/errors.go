package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed classification of failures reported by the auth
// gateway and by local form validation.
type ErrorKind int

const (
	// KindValidation is a request the client or server rejected as malformed.
	KindValidation ErrorKind = iota + 1
	// KindAuth is invalid credentials or an expired/invalid token.
	KindAuth
	// KindConflict is a duplicate identity on registration.
	KindConflict
	// KindNotFound is a missing resource.
	KindNotFound
	// KindServer is a 5xx response or an unusable success payload.
	KindServer
	// KindNetwork is a transport failure with no response.
	KindNetwork
)

// String returns the lowercase name of the kind, used as a metric label.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Human-readable fallbacks.
const (
	MessageRequestFailed = "Request failed"
	MessageNetwork       = "Unable to reach the server. Check your connection and try again."
	MessageNoSession     = "You are not signed in"
)

// AuthError is the structured outcome of a failed gateway call.
//
// Message is always safe to show to the user. Cause is for logs only.
type AuthError struct {
	Kind    ErrorKind
	Op      string // gateway operation, e.g. "login"
	Status  int    // HTTP status, 0 when no response was received
	Message string
	Cause   error
}

// Error implements the error interface. It returns the user-facing message.
func (e *AuthError) Error() string {
	if e.Message == "" {
		return MessageRequestFailed
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *AuthError) Unwrap() error {
	return e.Cause
}

// Is matches any *AuthError of the same kind, so the sentinels below can be
// used with errors.Is.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// String returns a log-oriented representation including op and status.
func (e *AuthError) String() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (%s, status %d)", e.Op, e.Error(), e.Kind, e.Status)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Op, e.Error(), e.Kind)
}

// NewAuthError creates an AuthError for the given operation.
func NewAuthError(kind ErrorKind, op, message string) *AuthError {
	return &AuthError{
		Kind:    kind,
		Op:      op,
		Message: message,
	}
}

// WithStatus returns a copy of the error carrying the HTTP status.
func (e *AuthError) WithStatus(status int) *AuthError {
	c := *e
	c.Status = status
	return &c
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *AuthError) WithCause(cause error) *AuthError {
	c := *e
	c.Cause = cause
	return &c
}

// Sentinels for errors.Is comparisons by kind.
var (
	ErrValidation = &AuthError{Kind: KindValidation}
	ErrAuth       = &AuthError{Kind: KindAuth}
	ErrConflict   = &AuthError{Kind: KindConflict}
	ErrNotFound   = &AuthError{Kind: KindNotFound}
	ErrServer     = &AuthError{Kind: KindServer}
	ErrNetwork    = &AuthError{Kind: KindNetwork}
)

// KindOf extracts the ErrorKind from err, or 0 if err is not an AuthError.
func KindOf(err error) ErrorKind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

// IsKind reports whether err is an AuthError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// UserMessage returns the text to show the user for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Error()
	}
	return MessageRequestFailed
}
