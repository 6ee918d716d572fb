package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/Sternrassler/catalog-client/internal/config"
	"github.com/Sternrassler/catalog-client/pkg/client"
	"github.com/Sternrassler/catalog-client/pkg/logging"
	"github.com/Sternrassler/catalog-client/pkg/ratelimit"
)

const redisPingTimeout = 5 * time.Second

// session is the client stack shared by all commands.
type session struct {
	cfg    config.Config
	client *client.Client
	redis  *redis.Client
	logger zerolog.Logger
}

// loadConfig resolves file, environment and flags, in increasing priority.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	if c.IsSet("base-url") {
		cfg.BaseURL = c.String("base-url")
	}
	if c.IsSet("user-agent") {
		cfg.UserAgent = c.String("user-agent")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.IsSet("redis-addr") {
		cfg.RedisAddr = c.String("redis-addr")
	}
	if c.IsSet("redis-password") {
		cfg.RedisPassword = c.String("redis-password")
	}
	if c.IsSet("redis-db") {
		cfg.RedisDB = c.Int("redis-db")
	}
	if c.IsSet("cache-ttl") {
		cfg.CacheTTL = c.Duration("cache-ttl")
	}
	if c.IsSet("rate-limit") {
		cfg.RateLimit = c.Float64("rate-limit")
	}
	if c.IsSet("rate-burst") {
		cfg.RateBurst = c.Int("rate-burst")
	}
	if c.IsSet("rate-max-wait") {
		cfg.RateMaxWait = c.Duration("rate-max-wait")
	}
	if c.IsSet("retries") {
		cfg.MaxRetries = c.Int("retries")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-pretty") {
		cfg.LogPretty = c.Bool("log-pretty")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openSession sets up logging to logOut (stderr when nil) and builds the
// client. Redis is connected only when configured.
func openSession(c *cli.Context, logOut io.Writer) (*session, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	if logOut == nil {
		logOut = os.Stderr
	}
	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: logOut,
	})
	logger := logging.NewLogger("cli")

	s := &session{cfg: cfg, logger: logger}

	clientCfg := client.Config{
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
		CacheTTL:  cfg.CacheTTL,
		RateLimit: ratelimit.Config{
			RequestsPerSecond: cfg.RateLimit,
			Burst:             cfg.RateBurst,
			MaxWait:           cfg.RateMaxWait,
		},
		Retry: client.DefaultRetryConfig(),
	}
	clientCfg.Retry.MaxRetries = cfg.MaxRetries

	if cfg.RedisAddr != "" {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(c.Context, redisPingTimeout)
		defer cancel()
		if err := s.redis.Ping(ctx).Err(); err != nil {
			_ = s.redis.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		logger.Debug().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")
		clientCfg.Redis = s.redis
	}

	s.client, err = client.New(clientCfg)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("create client: %w", err)
	}
	return s, nil
}

// Close releases the client and the Redis connection.
func (s *session) Close() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
}
