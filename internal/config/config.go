// Package config loads catalog CLI settings from an optional TOML file and
// overlays CATALOG_* environment variables. Command-line flags are applied
// on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/Sternrassler/catalog-client/pkg/catalog"
)

// DefaultPath is read when no explicit path is given.
const DefaultPath = "~/.config/catalog/config.toml"

const (
	defaultUserAgent      = "catalog-client/1.0"
	defaultLogFile        = "~/.local/state/catalog/browse.log"
	defaultProxyAddr      = ":8080"
	defaultTimeout        = 15 * time.Second
	defaultCacheTTL       = 5 * time.Minute
	defaultRateLimit      = 10
	defaultBurst          = 5
	defaultSearchDebounce = 500 * time.Millisecond
)

// Config holds the resolved settings.
type Config struct {
	BaseURL   string        `env:"CATALOG_BASE_URL"`
	UserAgent string        `env:"CATALOG_USER_AGENT"`
	Timeout   time.Duration `env:"CATALOG_TIMEOUT"`

	// RedisAddr enables caching when set.
	RedisAddr     string        `env:"CATALOG_REDIS_ADDR"`
	RedisPassword string        `env:"CATALOG_REDIS_PASSWORD"`
	RedisDB       int           `env:"CATALOG_REDIS_DB"`
	CacheTTL      time.Duration `env:"CATALOG_CACHE_TTL"`

	RateLimit   float64       `env:"CATALOG_RATE_LIMIT"`
	RateBurst   int           `env:"CATALOG_RATE_BURST"`
	RateMaxWait time.Duration `env:"CATALOG_RATE_MAX_WAIT"`
	MaxRetries  int           `env:"CATALOG_RETRIES"`

	LogLevel  string `env:"CATALOG_LOG_LEVEL"`
	LogPretty bool   `env:"CATALOG_LOG_PRETTY"`
	LogFile   string `env:"CATALOG_LOG_FILE"`

	ProxyAddr   string `env:"CATALOG_PROXY_ADDR"`
	MetricsAddr string `env:"CATALOG_METRICS_ADDR"`

	SearchDebounce time.Duration `env:"CATALOG_SEARCH_DEBOUNCE"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		BaseURL:        catalog.DefaultBaseURL,
		UserAgent:      defaultUserAgent,
		Timeout:        defaultTimeout,
		CacheTTL:       defaultCacheTTL,
		RateLimit:      defaultRateLimit,
		RateBurst:      defaultBurst,
		LogLevel:       "info",
		LogFile:        mustExpand(defaultLogFile),
		ProxyAddr:      defaultProxyAddr,
		SearchDebounce: defaultSearchDebounce,
	}
}

// fileConfig mirrors the TOML layout. Durations are strings such as "15s".
type fileConfig struct {
	API struct {
		BaseURL   string `toml:"base_url"`
		UserAgent string `toml:"user_agent"`
		Timeout   string `toml:"timeout"`
	} `toml:"api"`
	Cache struct {
		RedisAddr     string `toml:"redis_addr"`
		RedisPassword string `toml:"redis_password"`
		RedisDB       int    `toml:"redis_db"`
		TTL           string `toml:"ttl"`
	} `toml:"cache"`
	RateLimit struct {
		RequestsPerSecond *float64 `toml:"requests_per_second"`
		Burst             int      `toml:"burst"`
		MaxWait           string   `toml:"max_wait"`
		Retries           int      `toml:"retries"`
	} `toml:"rate_limit"`
	Log struct {
		Level  string `toml:"level"`
		Pretty bool   `toml:"pretty"`
		File   string `toml:"file"`
	} `toml:"log"`
	Proxy struct {
		Addr        string `toml:"addr"`
		MetricsAddr string `toml:"metrics_addr"`
	} `toml:"proxy"`
	Browse struct {
		SearchDebounce string `toml:"search_debounce"`
	} `toml:"browse"`
}

// Load reads the file at path (DefaultPath when empty), falling back to
// defaults when it does not exist, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := cfg.applyFile(data); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.LogFile = mustExpand(cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(data []byte) error {
	var raw fileConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	setString(&c.BaseURL, raw.API.BaseURL)
	setString(&c.UserAgent, raw.API.UserAgent)
	setString(&c.RedisAddr, raw.Cache.RedisAddr)
	setString(&c.RedisPassword, raw.Cache.RedisPassword)
	setString(&c.LogLevel, raw.Log.Level)
	setString(&c.LogFile, raw.Log.File)
	setString(&c.ProxyAddr, raw.Proxy.Addr)
	setString(&c.MetricsAddr, raw.Proxy.MetricsAddr)

	if raw.Cache.RedisDB != 0 {
		c.RedisDB = raw.Cache.RedisDB
	}
	if raw.RateLimit.RequestsPerSecond != nil {
		c.RateLimit = *raw.RateLimit.RequestsPerSecond
	}
	if raw.RateLimit.Burst != 0 {
		c.RateBurst = raw.RateLimit.Burst
	}
	if raw.RateLimit.Retries != 0 {
		c.MaxRetries = raw.RateLimit.Retries
	}
	c.LogPretty = c.LogPretty || raw.Log.Pretty

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"api.timeout", raw.API.Timeout, &c.Timeout},
		{"cache.ttl", raw.Cache.TTL, &c.CacheTTL},
		{"rate_limit.max_wait", raw.RateLimit.MaxWait, &c.RateMaxWait},
		{"browse.search_debounce", raw.Browse.SearchDebounce, &c.SearchDebounce},
	}
	for _, d := range durations {
		if strings.TrimSpace(d.value) == "" {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(d.value))
		if err != nil {
			return fmt.Errorf("parse config: %s: %w", d.name, err)
		}
		*d.dst = parsed
	}
	return nil
}

// Validate rejects settings the client cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.BaseURL) == "" {
		errs = append(errs, errors.New("base url is required"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive (got %s)", c.Timeout))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate limit must be >= 0 (got %v)", c.RateLimit))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("retries must be >= 0 (got %d)", c.MaxRetries))
	}
	if c.SearchDebounce < 0 {
		errs = append(errs, fmt.Errorf("search debounce must be >= 0 (got %s)", c.SearchDebounce))
	}
	return errors.Join(errs...)
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(DefaultPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	if path == "" {
		return ""
	}
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
