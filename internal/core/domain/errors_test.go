package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestAuthError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AuthError
		expected string
	}{
		{"with message", NewAuthError(KindAuth, "login", "Invalid email or password"), "Invalid email or password"},
		{"empty message falls back", NewAuthError(KindServer, "login", ""), MessageRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAuthError_IsByKind(t *testing.T) {
	err := NewAuthError(KindAuth, "profile", "token expired").WithStatus(401)

	if !errors.Is(err, ErrAuth) {
		t.Error("errors.Is should match ErrAuth")
	}
	if errors.Is(err, ErrServer) {
		t.Error("errors.Is should not match ErrServer")
	}

	wrapped := fmt.Errorf("fetch profile: %w", err)
	if !errors.Is(wrapped, ErrAuth) {
		t.Error("errors.Is should match through wrapping")
	}
	if KindOf(wrapped) != KindAuth {
		t.Errorf("KindOf() = %v, want %v", KindOf(wrapped), KindAuth)
	}
}

func TestAuthError_WithCause(t *testing.T) {
	cause := errors.New("connection refused")
	original := NewAuthError(KindNetwork, "login", MessageNetwork)
	err := original.WithCause(cause)

	if errors.Unwrap(err) != cause {
		t.Error("Unwrap() should return the cause")
	}
	if original.Cause != nil {
		t.Error("WithCause should not modify the original")
	}
}

func TestKindOf_NonAuthError(t *testing.T) {
	if KindOf(errors.New("plain")) != 0 {
		t.Error("KindOf() should be 0 for non-AuthError")
	}
	if IsKind(nil, KindAuth) {
		t.Error("IsKind(nil) should be false")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(nil); got != "" {
		t.Errorf("UserMessage(nil) = %q, want empty", got)
	}
	if got := UserMessage(errors.New("boom")); got != MessageRequestFailed {
		t.Errorf("UserMessage(plain) = %q, want %q", got, MessageRequestFailed)
	}
	err := NewAuthError(KindConflict, "register", "Email already registered")
	if got := UserMessage(err); got != "Email already registered" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestErrorKind_String(t *testing.T) {
	kinds := map[ErrorKind]string{
		KindValidation: "validation",
		KindAuth:       "auth",
		KindConflict:   "conflict",
		KindNotFound:   "not_found",
		KindServer:     "server",
		KindNetwork:    "network",
		ErrorKind(99):  "unknown",
	}
	for k, want := range kinds {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
