package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/yndnr/sessiongate/internal/storage"
)

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if err := verifyAPI(&cfg.API); err != nil {
		return err
	}
	if err := verifySession(&cfg.Session); err != nil {
		return err
	}
	if err := verifyLog(&cfg.Log); err != nil {
		return err
	}

	switch cfg.Output.Format {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("output.format: unsupported format %q", cfg.Output.Format)
	}

	if cfg.Form.MinPassword < 1 {
		return errors.New("form.minpassword must be at least 1")
	}
	return nil
}

func verifyAPI(cfg *APISection) error {
	if cfg.URL == "" {
		return errors.New("api.url is required")
	}

	raw := cfg.URL
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("api.url: invalid URL %q", cfg.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.url: unsupported scheme %q", u.Scheme)
	}

	if cfg.Timeout < 0 {
		return errors.New("api.timeout must not be negative")
	}
	if cfg.RateLimit < 0 {
		return errors.New("api.ratelimit must not be negative")
	}

	for name, p := range map[string]string{
		"login":          cfg.Paths.Login,
		"register":       cfg.Paths.Register,
		"forgotpassword": cfg.Paths.ForgotPassword,
		"resetpassword":  cfg.Paths.ResetPassword,
		"verify":         cfg.Paths.Verify,
		"profile":        cfg.Paths.Profile,
	} {
		if p != "" && !strings.HasPrefix(p, "/") {
			return fmt.Errorf("api.paths.%s must start with /", name)
		}
	}
	return nil
}

func verifySession(cfg *SessionSection) error {
	switch strings.ToLower(cfg.Backend) {
	case storage.EngineBadger, storage.EngineBolt:
		if cfg.Dir == "" {
			return errors.New("session.dir is required for persistent backends")
		}
	case storage.EngineMemory:
	default:
		return fmt.Errorf("session.backend: unknown backend %q", cfg.Backend)
	}

	if cfg.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Format)
	}
	return nil
}
