package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miniprog/graphql-request/config"
	"github.com/miniprog/graphql-request/pkg/statementcache"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_defaults(t *testing.T) {
	cfg, err := config.Load("", config.WithEnvFile(""), config.WithEnvPrefix("GQLC_TEST_DEFAULTS"))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "X-Request-Id", cfg.RequestIDHeader)
	assert.Equal(t, "Authorization", cfg.Auth.Key)
	assert.Equal(t, config.CacheMemory, cfg.Cache.Driver)
	assert.Equal(t, "localhost:6379", cfg.Cache.Redis.Addr)
}

func TestLoad_fileAndEnvironment(t *testing.T) {
	path := writeFile(t, "gqlc.yaml", `
endpoint: https://api.example.com/graphql
timeout: 5s
debug: true
headers:
  X-Client: gqlc
auth:
  token: Bearer file
  exclusive:
    - /login
cache:
  driver: bigcache
  ttl: 1m
`)
	t.Setenv("GQLC_TEST_FILE_AUTH__TOKEN", "Bearer env")
	t.Setenv("GQLC_TEST_FILE_REQUEST_ID_HEADER", "X-Trace-Id")

	cfg, err := config.Load(path, config.WithEnvFile(""), config.WithEnvPrefix("GQLC_TEST_FILE"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/graphql", cfg.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "gqlc", cfg.Headers["X-Client"])
	assert.Equal(t, "Bearer env", cfg.Auth.Token)
	assert.Equal(t, []string{"/login"}, cfg.Auth.Exclusive)
	assert.Equal(t, "X-Trace-Id", cfg.RequestIDHeader)
	assert.Equal(t, config.CacheBigcache, cfg.Cache.Driver)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
}

func TestLoad_envFile(t *testing.T) {
	const key = "GQLC_TEST_DOTENV_ENDPOINT"
	t.Cleanup(func() { _ = os.Unsetenv(key) })
	envFile := writeFile(t, ".env", key+"=http://localhost:4000/graphql\n")

	cfg, err := config.Load("", config.WithEnvFile(envFile), config.WithEnvPrefix("GQLC_TEST_DOTENV"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4000/graphql", cfg.Endpoint)
}

func TestLoad_errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), config.WithEnvFile(""))
	assert.Error(t, err)

	path := writeFile(t, "bad.yaml", "cache:\n  driver: memcached\n")
	_, err = config.Load(path, config.WithEnvFile(""), config.WithEnvPrefix("GQLC_TEST_ERRORS"))
	assert.ErrorContains(t, err, "memcached")
}

func TestConfig_RequestConfig(t *testing.T) {
	cfg := &config.Config{
		Timeout:         time.Second,
		Debug:           true,
		RequestIDHeader: "X-Request-Id",
		Headers:         map[string]string{"x-client": "gqlc"},
		Auth: config.Auth{
			Token:     "Bearer t",
			Key:       "Authorization",
			Exclusive: []string{"/login"},
		},
	}
	rc := cfg.RequestConfig()

	assert.Equal(t, time.Second, rc.Timeout)
	assert.True(t, rc.Debug)
	assert.Equal(t, "gqlc", rc.Headers.Common.Get("X-Client"))
	require.NotNil(t, rc.Auth)
	assert.Equal(t, "Bearer t", rc.Auth())
	assert.Nil(t, rc.AuthURL.Inclusive)
	assert.Equal(t, []string{"/login"}, rc.AuthURL.Exclusive)
}

func TestConfig_StatementCache(t *testing.T) {
	ctx := context.Background()

	c, err := (&config.Config{Cache: config.Cache{Driver: config.CacheMemory}}).StatementCache(ctx)
	require.NoError(t, err)
	assert.IsType(t, &statementcache.Memory{}, c)

	c, err = (&config.Config{Cache: config.Cache{Driver: config.CacheBigcache}}).StatementCache(ctx)
	require.NoError(t, err)
	assert.IsType(t, &statementcache.GoCache[[]byte]{}, c)

	c, err = (&config.Config{Cache: config.Cache{Driver: config.CacheRedis, Redis: config.Redis{Addr: "localhost:0"}}}).StatementCache(ctx)
	require.NoError(t, err)
	assert.IsType(t, &statementcache.GoCache[string]{}, c)

	c, err = (&config.Config{Cache: config.Cache{Driver: config.CacheNone}}).StatementCache(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)
}
