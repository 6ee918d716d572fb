package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/catalog-client/pkg/catalog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseURL != catalog.DefaultBaseURL {
		t.Fatalf("BaseURL = %q, want %q", cfg.BaseURL, catalog.DefaultBaseURL)
	}
	if cfg.Timeout != defaultTimeout {
		t.Fatalf("Timeout = %v, want %v", cfg.Timeout, defaultTimeout)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("RedisAddr = %q, want caching disabled by default", cfg.RedisAddr)
	}
	if cfg.MaxRetries != 0 {
		t.Fatalf("MaxRetries = %d, want 0", cfg.MaxRetries)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
}

func TestLoad_ParsesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, `
[api]
base_url = "  http://localhost:3000/api  "
timeout = "3s"

[cache]
redis_addr = "localhost:6379"
redis_db = 2
ttl = "1m"

[rate_limit]
requests_per_second = 0
burst = 2
max_wait = "30s"
retries = 1

[log]
level = "debug"
pretty = true

[browse]
search_debounce = "250ms"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.BaseURL != "http://localhost:3000/api" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", cfg.Timeout)
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 2 {
		t.Errorf("Redis = %q db %d", cfg.RedisAddr, cfg.RedisDB)
	}
	if cfg.CacheTTL != time.Minute {
		t.Errorf("CacheTTL = %v, want 1m", cfg.CacheTTL)
	}
	if cfg.RateLimit != 0 {
		t.Errorf("RateLimit = %v, want 0 (explicitly disabled)", cfg.RateLimit)
	}
	if cfg.RateBurst != 2 || cfg.RateMaxWait != 30*time.Second || cfg.MaxRetries != 1 {
		t.Errorf("rate limit = %v/%v/%v", cfg.RateBurst, cfg.RateMaxWait, cfg.MaxRetries)
	}
	if cfg.LogLevel != "debug" || !cfg.LogPretty {
		t.Errorf("log = %q pretty=%v", cfg.LogLevel, cfg.LogPretty)
	}
	if cfg.SearchDebounce != 250*time.Millisecond {
		t.Errorf("SearchDebounce = %v, want 250ms", cfg.SearchDebounce)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CATALOG_BASE_URL", "http://env:9000/api")
	t.Setenv("CATALOG_TIMEOUT", "7s")
	t.Setenv("CATALOG_RETRIES", "2")

	path := writeConfig(t, `
[api]
base_url = "http://file:3000/api"
user_agent = "from-file/1.0"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseURL != "http://env:9000/api" {
		t.Errorf("BaseURL = %q, want env value", cfg.BaseURL)
	}
	if cfg.UserAgent != "from-file/1.0" {
		t.Errorf("UserAgent = %q, want file value", cfg.UserAgent)
	}
	if cfg.Timeout != 7*time.Second {
		t.Errorf("Timeout = %v, want 7s", cfg.Timeout)
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want 2", cfg.MaxRetries)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "invalid toml", body: "[api\nbase_url=", want: "parse config"},
		{name: "invalid duration", body: "[api]\ntimeout = \"soon\"", want: "api.timeout"},
		{name: "negative retries", body: "[rate_limit]\nretries = -1", want: "retries must be >= 0"},
		{name: "zero timeout", body: "[api]\ntimeout = \"0s\"", want: "timeout must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CATALOG_RATE_BURST", "many")

	if _, err := Load(""); err == nil {
		t.Fatal("Load should fail on an unparsable environment value")
	}
}
