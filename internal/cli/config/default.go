package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/yndnr/sessiongate/internal/core/domain"
	"github.com/yndnr/sessiongate/internal/form"
	"github.com/yndnr/sessiongate/internal/gateway"
	"github.com/yndnr/sessiongate/internal/storage"
)

// Default configuration values.
const (
	DefaultAPIURL       = gateway.DefaultBaseURL
	DefaultAPITimeout   = 30 * time.Second
	DefaultBackend      = storage.EngineBadger
	DefaultLogLevel     = "warn"
	DefaultLogFormat    = "text"
	DefaultOutputFormat = "table"
	DefaultSessionTTL   = domain.DefaultSessionTTL
	DefaultMinPassword  = form.DefaultMinPasswordLength

	configDirName  = ".sessiongate"
	configFileName = "cli.yaml"
	sessionDirName = "session"
)

// DefaultDir returns ~/.sessiongate, or a relative .sessiongate when the
// home directory is unknown.
func DefaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return configDirName
	}
	return filepath.Join(homeDir, configDirName)
}

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDir(), configFileName)
}

// Default returns the default CLI configuration.
func Default() *Config {
	paths := gateway.DefaultPaths()
	return &Config{
		API: APISection{
			URL:            DefaultAPIURL,
			Timeout:        DefaultAPITimeout,
			NonEnumerating: true,
			Paths: PathsSection{
				Login:          paths.Login,
				Register:       paths.Register,
				ForgotPassword: paths.ForgotPassword,
				ResetPassword:  paths.ResetPassword,
				Verify:         paths.Verify,
				Profile:        paths.Profile,
			},
		},
		Session: SessionSection{
			Backend: DefaultBackend,
			Dir:     filepath.Join(DefaultDir(), sessionDirName),
			TTL:     DefaultSessionTTL,
		},
		Form: FormSection{
			MinPassword: DefaultMinPassword,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Output: OutputSection{
			Format: DefaultOutputFormat,
		},
	}
}

// defaultMap flattens Default into dotted keys for the loader.
func defaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"api.url":                  d.API.URL,
		"api.timeout":              d.API.Timeout.String(),
		"api.ratelimit":            d.API.RateLimit,
		"api.nonenumerating":       d.API.NonEnumerating,
		"api.cafile":               d.API.CAFile,
		"api.paths.login":          d.API.Paths.Login,
		"api.paths.register":       d.API.Paths.Register,
		"api.paths.forgotpassword": d.API.Paths.ForgotPassword,
		"api.paths.resetpassword":  d.API.Paths.ResetPassword,
		"api.paths.verify":         d.API.Paths.Verify,
		"api.paths.profile":        d.API.Paths.Profile,
		"session.backend":          d.Session.Backend,
		"session.dir":              d.Session.Dir,
		"session.ttl":              d.Session.TTL.String(),
		"session.verify":           d.Session.Verify,
		"form.minpassword":         d.Form.MinPassword,
		"log.level":                d.Log.Level,
		"log.format":               d.Log.Format,
		"output.format":            d.Output.Format,
	}
}

// GatewayConfig converts the api section into a gateway configuration.
func (c *Config) GatewayConfig() gateway.Config {
	cfg := gateway.DefaultConfig()
	cfg.BaseURL = c.API.URL
	cfg.Timeout = c.API.Timeout
	cfg.RateLimit = c.API.RateLimit
	cfg.NonEnumeratingReset = c.API.NonEnumerating
	cfg.Paths = gateway.Paths{
		Login:          c.API.Paths.Login,
		Register:       c.API.Paths.Register,
		ForgotPassword: c.API.Paths.ForgotPassword,
		ResetPassword:  c.API.Paths.ResetPassword,
		Verify:         c.API.Paths.Verify,
		Profile:        c.API.Paths.Profile,
	}.WithDefaults()
	return cfg
}

// KVConfig converts the session section into a storage configuration.
func (c *Config) KVConfig() storage.KVConfig {
	cfg := storage.DefaultKVConfig(c.Session.Dir)
	cfg.Engine = c.Session.Backend
	return cfg
}
