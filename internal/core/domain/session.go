package domain

import "time"

// DefaultSessionTTL is the persistence window applied from issuance when the
// server does not bound the session more tightly.
const DefaultSessionTTL = 24 * time.Hour

// Session represents the authenticated state of the client.
//
// A Session is only meaningful while now < ExpiresAt. A zero ExpiresAt is
// treated as already expired.
type Session struct {
	// Token is the bearer token returned by the login exchange.
	Token string `json:"token"`

	// SubjectID identifies the authenticated user.
	SubjectID string `json:"subjectId"`

	// IssuedAt is the client-side time the session was created.
	IssuedAt time.Time `json:"issuedAt"`

	// ExpiresAt is the absolute expiry of the session.
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsValidAt reports whether the session carries a token and has not expired at now.
func (s *Session) IsValidAt(now time.Time) bool {
	if s == nil || s.Token == "" {
		return false
	}
	return now.Before(s.ExpiresAt)
}

// IsExpiredAt reports whether the session has expired at now.
func (s *Session) IsExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// TTLAt returns the remaining lifetime at now, or 0 if expired.
func (s *Session) TTLAt(now time.Time) time.Duration {
	remaining := s.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// AuthorizationHeader returns the value for the HTTP Authorization header.
func (s *Session) AuthorizationHeader() string {
	return "Bearer " + s.Token
}

// Credentials is the transient login input.
type Credentials struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Registration is the transient signup input.
type Registration struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// PasswordReset is the transient input that redeems a reset token.
type PasswordReset struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// Profile is the authenticated user's account data.
type Profile struct {
	SubjectID string    `json:"subjectId"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Confirmation is a human-readable success message from the auth API.
type Confirmation struct {
	Message string `json:"message"`
}

// MessageResetRequested is the reset confirmation shown whether or not the
// email belongs to an account.
const MessageResetRequested = "If an account with that email exists, a password reset link will be sent."

// MessagePasswordReset confirms a redeemed reset token.
const MessagePasswordReset = "Password has been reset successfully."
