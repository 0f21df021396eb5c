package command

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupAndLogin(t *testing.T) {
	tc := newTestCLI(t)

	res := tc.run("", "signup",
		"--name", "Ada Lovelace",
		"--email", "ada@example.com",
		"--password", "analytical",
		"--confirm-password", "analytical",
	)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "✓ Account created successfully. Redirecting to sign in…")

	res = tc.run("", "login", "--user", "ADA@example.com", "--password", "analytical")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "✓ Login successful! Redirecting...")
	assert.Contains(t, res.stderr, "Submitting...", "spinner runs while submitting")

	// The session survives the process: a second login is refused.
	res = tc.run("", "login", "--user", "ada@example.com", "--password", "analytical")
	assert.ErrorIs(t, res.err, errAlreadySignedIn)
}

func TestLogin_PromptsForMissingFields(t *testing.T) {
	tc := newTestCLI(t)
	tc.signup("Ada Lovelace", "ada@example.com", "analytical")

	res := tc.run("ada@example.com\nanalytical\n", "login")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stderr, "User ID or email: ")
	assert.Contains(t, res.stderr, "Password: ")
	assert.Contains(t, res.stdout, "Login successful")
}

func TestLogin_ValidationErrors(t *testing.T) {
	tc := newTestCLI(t)

	res := tc.run("", "login")
	assert.ErrorIs(t, res.err, errInvalidFields)
	assert.Contains(t, res.stdout, "User ID or email is required")
	assert.Contains(t, res.stdout, "Password is required")
}

func TestLogin_BadCredentials(t *testing.T) {
	tc := newTestCLI(t)
	tc.signup("Ada Lovelace", "ada@example.com", "analytical")

	res := tc.run("", "login", "--user", "ada@example.com", "--password", "wrong-one")
	assert.EqualError(t, res.err, "Invalid email or password")
}

func TestLogin_JSONOutput(t *testing.T) {
	tc := newTestCLI(t)
	tc.signup("Ada Lovelace", "ada@example.com", "analytical")

	res := tc.run("", "--output", "json", "login", "--user", "ada@example.com", "--password", "analytical")
	require.NoError(t, res.err, res.stderr)

	var got formResult
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
	assert.Equal(t, "login", got.Flow)
	assert.Equal(t, "succeeded", got.Status)
	assert.Equal(t, "Login successful! Redirecting...", got.Confirmation)
	assert.NotContains(t, res.stderr, "Submitting...", "no spinner in machine-readable mode")
}

func TestSignup_Conflict(t *testing.T) {
	tc := newTestCLI(t)
	tc.signup("Ada Lovelace", "ada@example.com", "analytical")

	res := tc.run("", "signup",
		"--name", "Ada Again",
		"--email", "ada@example.com",
		"--password", "analytical",
		"--confirm-password", "analytical",
	)
	assert.EqualError(t, res.err, "Email already registered")
}

func TestSignup_PasswordMismatch(t *testing.T) {
	tc := newTestCLI(t)

	res := tc.run("", "signup",
		"--name", "Ada Lovelace",
		"--email", "ada@example.com",
		"--password", "analytical",
		"--confirm-password", "different",
	)
	assert.ErrorIs(t, res.err, errInvalidFields)
	assert.Contains(t, res.stdout, "Passwords do not match.")
}

func TestForgotPassword_NonEnumerating(t *testing.T) {
	tc := newTestCLI(t)
	tc.signup("Ada Lovelace", "ada@example.com", "analytical")

	known := tc.run("", "forgot-password", "--email", "ada@example.com")
	require.NoError(t, known.err)
	unknown := tc.run("", "forgot-password", "--email", "nobody@example.com")
	require.NoError(t, unknown.err)

	assert.Equal(t, known.stdout, unknown.stdout)
	assert.Contains(t, known.stdout, "If an account with that email exists")
}

func TestResetPassword(t *testing.T) {
	tc := newTestCLI(t)
	tc.signup("Ada Lovelace", "ada@example.com", "analytical")

	res := tc.run("", "forgot-password", "--email", "ada@example.com")
	require.NoError(t, res.err, res.stderr)
	tok := tc.lastResetToken()

	res = tc.run("", "reset-password", "--token", tok, "--password", "difference-engine", "--confirm-password", "difference-engine")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "✓ Password has been reset successfully.")

	res = tc.run("", "reset-password", "--token", tok, "--password", "difference-engine", "--confirm-password", "difference-engine")
	assert.EqualError(t, res.err, "Invalid or expired password reset token", "a token is redeemed once")

	res = tc.run("", "login", "--user", "ada@example.com", "--password", "analytical")
	assert.EqualError(t, res.err, "Invalid email or password")
	tc.login("ada@example.com", "difference-engine")
}

func TestResetPassword_PromptsAndValidates(t *testing.T) {
	tc := newTestCLI(t)

	res := tc.run("", "reset-password", "--password", "short", "--confirm-password", "short")
	assert.ErrorIs(t, res.err, errInvalidFields)
	assert.Contains(t, res.stdout, "Reset token is required")
	assert.Contains(t, res.stdout, "Password must be at least 8 characters long")

	res = tc.run("stale-token\ndifference-engine\ndifference-engine\n", "reset-password")
	assert.EqualError(t, res.err, "Invalid or expired password reset token")
	assert.Contains(t, res.stderr, "Reset token: ")
	assert.Contains(t, res.stderr, "Confirm password: ")
}

func TestLogout(t *testing.T) {
	tc := newTestCLI(t)

	res := tc.run("", "logout")
	require.NoError(t, res.err)
	assert.Equal(t, "Not signed in\n", res.stdout)

	tc.signup("Ada Lovelace", "ada@example.com", "analytical")
	tc.login("ada@example.com", "analytical")

	res = tc.run("", "logout")
	require.NoError(t, res.err)
	assert.Equal(t, "Signed out\n", res.stdout)

	res = tc.run("", "--output", "json", "status")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"authenticated": false`)
}
