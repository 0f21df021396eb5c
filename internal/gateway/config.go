package gateway

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the local development API address.
const DefaultBaseURL = "http://localhost:8000"

// Paths are the endpoint paths relative to the base URL.
type Paths struct {
	Login          string
	Register       string
	ForgotPassword string
	ResetPassword  string
	Verify         string
	Profile        string
}

// DefaultPaths returns the canonical endpoint layout.
func DefaultPaths() Paths {
	return Paths{
		Login:          "/api/auth/login",
		Register:       "/api/auth/register",
		ForgotPassword: "/api/auth/forgot-password",
		ResetPassword:  "/api/auth/reset-password",
		Verify:         "/api/auth/verify",
		Profile:        "/api/auth/profile",
	}
}

// Config configures a Gateway.
type Config struct {
	// BaseURL is the API address. A missing scheme defaults to http.
	BaseURL string
	// Timeout bounds each HTTP round trip. Zero means no timeout.
	Timeout time.Duration
	// Paths overrides individual endpoint paths; empty entries use defaults.
	Paths Paths
	// RateLimit caps outgoing requests per second. Zero disables limiting.
	RateLimit float64
	// RateBurst is the limiter burst size. Default: 1.
	RateBurst int
	// NonEnumeratingReset rewrites a 404 on password reset into the generic
	// confirmation so the UI never reveals whether an account exists.
	NonEnumeratingReset bool
	// UserAgent is sent on every request.
	UserAgent string
}

// DefaultConfig returns the default gateway configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:             DefaultBaseURL,
		Timeout:             30 * time.Second,
		Paths:               DefaultPaths(),
		RateBurst:           1,
		NonEnumeratingReset: true,
		UserAgent:           "sessiongate",
	}
}

// normalizeBaseURL adds a missing scheme and strips trailing slashes.
func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultBaseURL
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("gateway: invalid base URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("gateway: base URL %q has no host", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// WithDefaults fills empty paths from DefaultPaths.
func (p Paths) WithDefaults() Paths {
	def := DefaultPaths()
	if p.Login == "" {
		p.Login = def.Login
	}
	if p.Register == "" {
		p.Register = def.Register
	}
	if p.ForgotPassword == "" {
		p.ForgotPassword = def.ForgotPassword
	}
	if p.ResetPassword == "" {
		p.ResetPassword = def.ResetPassword
	}
	if p.Verify == "" {
		p.Verify = def.Verify
	}
	if p.Profile == "" {
		p.Profile = def.Profile
	}
	return p
}
