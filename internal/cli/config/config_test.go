package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.API.URL != "http://localhost:8000" {
		t.Errorf("API.URL = %q, want %q", cfg.API.URL, "http://localhost:8000")
	}
	if cfg.API.Paths.Login != "/api/auth/login" {
		t.Errorf("API.Paths.Login = %q", cfg.API.Paths.Login)
	}
	if !cfg.API.NonEnumerating {
		t.Error("API.NonEnumerating should default to true")
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("Session.TTL = %v, want 24h", cfg.Session.TTL)
	}
	if cfg.Output.Format != "table" {
		t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, "table")
	}
	if err := Verify(cfg); err != nil {
		t.Errorf("Verify(Default()) error = %v", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	expected := filepath.Join(".sessiongate", "cli.yaml")
	if !strings.HasSuffix(path, expected) {
		t.Errorf("Path = %q, should end with %q", path, expected)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	if err != nil {
		t.Fatalf("Load should not error for nonexistent file: %v", err)
	}
	if cfg.API.URL != DefaultAPIURL {
		t.Errorf("API.URL = %q, want default", cfg.API.URL)
	}
	if cfg.API.Timeout != DefaultAPITimeout {
		t.Errorf("API.Timeout = %v, want default", cfg.API.Timeout)
	}
}

func TestLoad_Layers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	content := `
api:
  url: "http://from-file:9000"
  timeout: "5s"
  paths:
    login: "/api/v2/login"
session:
  backend: "memory"
  verify: true
output:
  format: "json"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SESSIONGATE_OUTPUT_FORMAT", "yaml")
	t.Setenv("SESSIONGATE_FORM_MINPASSWORD", "12")

	cfg, err := Load(path, map[string]any{
		"api.url":   "http://from-flag:9100",
		"log.level": "",
	})
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}

	if cfg.API.URL != "http://from-flag:9100" {
		t.Errorf("API.URL = %q, flag should win", cfg.API.URL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("API.Timeout = %v, want 5s from file", cfg.API.Timeout)
	}
	if cfg.API.Paths.Login != "/api/v2/login" {
		t.Errorf("API.Paths.Login = %q", cfg.API.Paths.Login)
	}
	if cfg.API.Paths.Register != "/api/auth/register" {
		t.Errorf("API.Paths.Register = %q, default should survive", cfg.API.Paths.Register)
	}
	if cfg.Session.Backend != "memory" || !cfg.Session.Verify {
		t.Errorf("Session = %+v", cfg.Session)
	}
	if cfg.Output.Format != "yaml" {
		t.Errorf("Output.Format = %q, env should override file", cfg.Output.Format)
	}
	if cfg.Form.MinPassword != 12 {
		t.Errorf("Form.MinPassword = %d, want 12", cfg.Form.MinPassword)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, empty flag must not mask default", cfg.Log.Level)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	if err := os.WriteFile(path, []byte("session:\n  backend: redis\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path, nil); err == nil {
		t.Error("Load should reject an unknown backend")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "cli.yaml")

	cfg := Default()
	cfg.API.URL = "https://auth.example.com"
	cfg.Session.TTL = 2 * time.Hour
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if loaded.API.URL != cfg.API.URL {
		t.Errorf("API.URL = %q, want %q", loaded.API.URL, cfg.API.URL)
	}
	if loaded.Session.TTL != 2*time.Hour {
		t.Errorf("Session.TTL = %v, want 2h", loaded.Session.TTL)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"host only url", func(c *Config) { c.API.URL = "localhost:8000" }, ""},
		{"empty url", func(c *Config) { c.API.URL = "" }, "api.url is required"},
		{"bad scheme", func(c *Config) { c.API.URL = "ftp://x" }, "unsupported scheme"},
		{"negative ratelimit", func(c *Config) { c.API.RateLimit = -1 }, "api.ratelimit"},
		{"relative path", func(c *Config) { c.API.Paths.Verify = "verify" }, "api.paths.verify"},
		{"relative reset path", func(c *Config) { c.API.Paths.ResetPassword = "reset" }, "api.paths.resetpassword"},
		{"unknown backend", func(c *Config) { c.Session.Backend = "redis" }, "session.backend"},
		{"missing dir", func(c *Config) { c.Session.Dir = "" }, "session.dir"},
		{"memory needs no dir", func(c *Config) {
			c.Session.Backend = "memory"
			c.Session.Dir = ""
		}, ""},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }, "session.ttl"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"bad output", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"zero min password", func(c *Config) { c.Form.MinPassword = 0 }, "form.minpassword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Verify(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Verify() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Verify() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GatewayConfig(t *testing.T) {
	cfg := Default()
	cfg.API.URL = "http://auth.local"
	cfg.API.RateLimit = 5
	cfg.API.Paths.Profile = ""
	cfg.API.Paths.ResetPassword = "/api/v2/reset"

	gw := cfg.GatewayConfig()
	if gw.BaseURL != "http://auth.local" {
		t.Errorf("BaseURL = %q", gw.BaseURL)
	}
	if gw.RateLimit != 5 {
		t.Errorf("RateLimit = %v", gw.RateLimit)
	}
	if gw.Paths.Profile != "/api/auth/profile" {
		t.Errorf("Paths.Profile = %q, empty path should fall back", gw.Paths.Profile)
	}
	if gw.Paths.ResetPassword != "/api/v2/reset" {
		t.Errorf("Paths.ResetPassword = %q", gw.Paths.ResetPassword)
	}
}

func TestConfig_KVConfig(t *testing.T) {
	cfg := Default()
	cfg.Session.Backend = "bbolt"
	cfg.Session.Dir = "/tmp/sg"

	kv := cfg.KVConfig()
	if kv.Engine != "bbolt" || kv.Dir != "/tmp/sg" {
		t.Errorf("KVConfig() = %+v", kv)
	}
}
