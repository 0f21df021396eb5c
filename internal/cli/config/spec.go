package config

import "time"

// Config is the configuration for the sessiongate CLI.
//
// Keys avoid underscores so that SESSIONGATE_API_RATELIMIT maps onto
// api.ratelimit without ambiguity.
type Config struct {
	API     APISection     `koanf:"api" yaml:"api"`
	Session SessionSection `koanf:"session" yaml:"session"`
	Form    FormSection    `koanf:"form" yaml:"form"`
	Log     LogSection     `koanf:"log" yaml:"log"`
	Output  OutputSection  `koanf:"output" yaml:"output"`
}

// APISection configures the auth gateway.
type APISection struct {
	URL     string        `koanf:"url" yaml:"url"`
	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`

	// RateLimit caps outgoing requests per second. Zero disables the limit.
	RateLimit float64 `koanf:"ratelimit" yaml:"ratelimit"`

	// NonEnumerating turns a 404 on password reset into the generic
	// confirmation.
	NonEnumerating bool `koanf:"nonenumerating" yaml:"nonenumerating"`

	// CAFile is a PEM bundle trusted in addition to the system roots.
	CAFile string `koanf:"cafile" yaml:"cafile"`

	Paths PathsSection `koanf:"paths" yaml:"paths"`
}

// PathsSection overrides the auth endpoint paths.
type PathsSection struct {
	Login          string `koanf:"login" yaml:"login"`
	Register       string `koanf:"register" yaml:"register"`
	ForgotPassword string `koanf:"forgotpassword" yaml:"forgotpassword"`
	ResetPassword  string `koanf:"resetpassword" yaml:"resetpassword"`
	Verify         string `koanf:"verify" yaml:"verify"`
	Profile        string `koanf:"profile" yaml:"profile"`
}

// SessionSection configures where the session record lives.
type SessionSection struct {
	// Backend is one of "badger", "bbolt" or "memory".
	Backend string        `koanf:"backend" yaml:"backend"`
	Dir     string        `koanf:"dir" yaml:"dir"`
	TTL     time.Duration `koanf:"ttl" yaml:"ttl"`

	// Verify asks the server to confirm the token before entering a
	// protected screen.
	Verify bool `koanf:"verify" yaml:"verify"`
}

// FormSection configures client-side form rules.
type FormSection struct {
	MinPassword int `koanf:"minpassword" yaml:"minpassword"`
}

// LogSection configures diagnostics on stderr.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// OutputSection configures command output.
type OutputSection struct {
	Format string `koanf:"format" yaml:"format"` // table, json, yaml
}
