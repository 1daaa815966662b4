// Package config loads gqlc settings from defaults, a .env file, a YAML
// file and GQLC_ environment variables, in increasing precedence.
package config

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"

	"github.com/miniprog/graphql-request"
	"github.com/miniprog/graphql-request/pkg/statementcache"
)

const (
	DefaultEnvPrefix = "GQLC"
	delim            = "."
)

// Cache drivers.
const (
	CacheMemory   = "memory"
	CacheBigcache = "bigcache"
	CacheRedis    = "redis"
	CacheNone     = "none"
)

type Config struct {
	Endpoint        string            `koanf:"endpoint"`
	Timeout         time.Duration     `koanf:"timeout"`
	Debug           bool              `koanf:"debug"`
	Custom          bool              `koanf:"custom"`
	Headers         map[string]string `koanf:"headers"`
	RequestIDHeader string            `koanf:"request_id_header"`
	Auth            Auth              `koanf:"auth"`
	Cache           Cache             `koanf:"cache"`
	Log             Log               `koanf:"log"`
}

type Auth struct {
	Token     string   `koanf:"token"`
	Key       string   `koanf:"key"`
	Inclusive []string `koanf:"inclusive"`
	Exclusive []string `koanf:"exclusive"`
}

type Cache struct {
	Driver string        `koanf:"driver"`
	TTL    time.Duration `koanf:"ttl"`
	Redis  Redis         `koanf:"redis"`
}

type Redis struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type Log struct {
	Verbosity int `koanf:"verbosity"`
}

func defaults() map[string]any {
	return map[string]any{
		"timeout":           "30s",
		"request_id_header": "X-Request-Id",
		"auth.key":          "Authorization",
		"cache.driver":      CacheMemory,
		"cache.ttl":         "0s",
		"cache.redis.addr":  "localhost:6379",
		"log.verbosity":     0,
	}
}

type Option func(*options)

type options struct {
	envPrefix string
	envFile   string
}

// WithEnvPrefix sets the environment variable prefix. GQLC by default.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithEnvFile sets the dotenv file loaded before the environment is read.
// ".env" by default; a missing file is skipped.
func WithEnvFile(path string) Option {
	return func(o *options) {
		o.envFile = path
	}
}

// Load reads the configuration. An empty path skips the YAML file.
//
// Environment variables map to keys by dropping the prefix, lowering the
// case and turning "__" into a key separator:
//
//	GQLC_AUTH__TOKEN -> auth.token
//	GQLC_REQUEST_ID_HEADER -> request_id_header
func Load(path string, opts ...Option) (*Config, error) {
	o := &options{envPrefix: DefaultEnvPrefix, envFile: ".env"}
	for _, opt := range opts {
		opt(o)
	}

	k := koanf.New(delim)
	if err := k.Load(confmap.Provider(defaults(), delim), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := loadEnvFile(o.envFile); err != nil {
		return nil, err
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	prefix := o.envPrefix + "_"
	envProvider := env.Provider(prefix, delim, func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, prefix)), "__", delim)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	drivers := []string{CacheMemory, CacheBigcache, CacheRedis, CacheNone}
	if !lo.Contains(drivers, c.Cache.Driver) {
		return fmt.Errorf("cache.driver: unknown driver %q, want one of %v", c.Cache.Driver, drivers)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout: must not be negative, got %v", c.Timeout)
	}
	return nil
}

// RequestConfig converts the HTTP settings into requester defaults.
func (c *Config) RequestConfig() *graphql.RequestConfig {
	rc := &graphql.RequestConfig{
		Timeout:         c.Timeout,
		Debug:           c.Debug,
		RequestIDHeader: c.RequestIDHeader,
		AuthKey:         c.Auth.Key,
		AuthURL: graphql.AuthURL{
			Inclusive: lo.Ternary(len(c.Auth.Inclusive) > 0, c.Auth.Inclusive, nil),
			Exclusive: lo.Ternary(len(c.Auth.Exclusive) > 0, c.Auth.Exclusive, nil),
		},
	}
	if c.Auth.Token != "" {
		rc.Auth = graphql.StaticAuth(c.Auth.Token)
	}
	if len(c.Headers) > 0 {
		rc.Headers.Common = http.Header{}
		for k, v := range c.Headers {
			rc.Headers.Common.Set(k, v)
		}
	}
	return rc
}

// StatementCache builds the configured cache. It returns nil for the
// "none" driver.
func (c *Config) StatementCache(ctx context.Context) (statementcache.Cache, error) {
	switch c.Cache.Driver {
	case CacheMemory:
		return statementcache.NewMemory(), nil
	case CacheBigcache:
		return statementcache.NewBigcache(ctx, c.Cache.TTL)
	case CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
		})
		return statementcache.NewRedis(client, c.Cache.TTL), nil
	case CacheNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}
}
