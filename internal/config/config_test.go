package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Crawler.MaxRetries != 3 {
		t.Fatalf("expected default max_retries 3, got %d", cfg.Crawler.MaxRetries)
	}
	if cfg.Quota.FreeTierLimit != 5 {
		t.Fatalf("expected default free tier limit 5, got %d", cfg.Quota.FreeTierLimit)
	}
	if got := cfg.RetryDelay(); got != time.Second {
		t.Fatalf("expected default retry delay 1s, got %v", got)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
crawler:
  max_retries: 5
  retry_delay_ms: 250
  timeout_seconds: 30
  user_agent: bookmark-agent
ai:
  api_key: secret
  model: gpt-4o
db:
  dsn: postgres://localhost/bookmarks
redis:
  addr: redis:6379
quota:
  free_tier_limit: 10
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Crawler.MaxRetries != 5 || cfg.Crawler.UserAgent != "bookmark-agent" {
		t.Fatalf("expected crawler overrides to apply: %+v", cfg.Crawler)
	}
	if cfg.AI.APIKey != "secret" || cfg.AI.Model != "gpt-4o" {
		t.Fatalf("expected ai overrides to apply: %+v", cfg.AI)
	}
	if cfg.DB.DSN != "postgres://localhost/bookmarks" {
		t.Fatalf("expected db dsn override, got %q", cfg.DB.DSN)
	}
	if cfg.Quota.FreeTierLimit != 10 {
		t.Fatalf("expected quota override, got %d", cfg.Quota.FreeTierLimit)
	}
	if got := cfg.FetchTimeout(); got != 30*time.Second {
		t.Fatalf("expected fetch timeout 30s, got %v", got)
	}
	if got := cfg.RetryDelay(); got != 250*time.Millisecond {
		t.Fatalf("expected retry delay 250ms, got %v", got)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"zero retries", func(c *Config) { c.Crawler.MaxRetries = 0 }},
		{"zero timeout", func(c *Config) { c.Crawler.TimeoutSeconds = 0 }},
		{"zero quota", func(c *Config) { c.Quota.FreeTierLimit = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
